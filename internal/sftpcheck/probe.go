// Package sftpcheck verifies that a managed server accepts SFTP logins.
package sftpcheck

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DefaultTimeout bounds the dial and handshake when no deadline is set.
const DefaultTimeout = 10 * time.Second

// Result describes a successful probe.
type Result struct {
	Address       string        `json:"address"`
	ServerVersion string        `json:"server_version"`
	WorkDir       string        `json:"work_dir"`
	Entries       int           `json:"entries"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Prober logs in over SSH with a password and opens an SFTP session.
type Prober struct {
	Timeout time.Duration
}

// Probe connects to addr as user, lists the session's working directory and
// disconnects.
func (p Prober) Probe(ctx context.Context, addr, user, password string) (Result, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{}, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		// The image generates fresh host keys for every container.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return Result{}, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	client := ssh.NewClient(c, chans, reqs)
	defer client.Close()

	sc, err := sftp.NewClient(client)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create sftp client: %w", err)
	}
	defer sc.Close()

	wd, err := sc.Getwd()
	if err != nil {
		return Result{}, fmt.Errorf("sftp getwd: %w", err)
	}
	entries, err := sc.ReadDir(wd)
	if err != nil {
		return Result{}, fmt.Errorf("sftp list %s: %w", wd, err)
	}

	return Result{
		Address:       addr,
		ServerVersion: string(c.ServerVersion()),
		WorkDir:       wd,
		Entries:       len(entries),
		Elapsed:       time.Since(start),
	}, nil
}
