package sftpcheck

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// startServer runs an in-process SSH server with an sftp subsystem that
// accepts a single user/password pair.
func startServer(t *testing.T, user, password string) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == user && string(pass) == password {
				return nil, nil
			}
			return nil, errors.New("permission denied")
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(conn, cfg)
		}
	}()
	return ln.Addr().String()
}

func serveConn(conn net.Conn, cfg *ssh.ServerConfig) {
	defer conn.Close()
	sconn, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "session" {
			nc.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, requests, err := nc.Accept()
		if err != nil {
			return
		}
		go func() {
			for req := range requests {
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				req.Reply(ok, nil)
				if !ok {
					continue
				}
				go func() {
					defer ch.Close()
					server, err := sftp.NewServer(ch)
					if err != nil {
						return
					}
					server.Serve()
				}()
			}
		}()
	}
}

func TestProbe(t *testing.T) {
	addr := startServer(t, "alice", "s3cret")

	res, err := Prober{Timeout: 5 * time.Second}.Probe(context.Background(), addr, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, addr, res.Address)
	assert.NotEmpty(t, res.WorkDir)
	assert.NotEmpty(t, res.ServerVersion)
	assert.Positive(t, res.Entries, "the working directory holds this package's sources")
}

func TestProbeWrongPassword(t *testing.T) {
	addr := startServer(t, "alice", "s3cret")

	_, err := Prober{Timeout: 5 * time.Second}.Probe(context.Background(), addr, "alice", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ssh handshake")
}

func TestProbeConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Prober{Timeout: time.Second}.Probe(context.Background(), addr, "alice", "s3cret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to")
}
