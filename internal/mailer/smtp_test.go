package mailer_test

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/logger"
	"github.com/Vishwas132/university-admin-panel/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smtpServer is a minimal SMTP responder that records the envelope sender
// and message data of each delivery.
type smtpServer struct {
	port       int
	rejectRcpt bool
	mailFrom   chan string
	data       chan string
}

func startSMTPServer(t *testing.T, rejectRcpt bool) *smtpServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := &smtpServer{
		port:       ln.Addr().(*net.TCPAddr).Port,
		rejectRcpt: rejectRcpt,
		mailFrom:   make(chan string, 1),
		data:       make(chan string, 1),
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()
	return srv
}

func (s *smtpServer) serve(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 localhost ESMTP")

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		switch strings.ToUpper(strings.SplitN(line, " ", 2)[0]) {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 8BITMIME")
		case "MAIL":
			select {
			case s.mailFrom <- line:
			default:
			}
			_ = tp.PrintfLine("250 OK")
		case "RCPT":
			if s.rejectRcpt {
				_ = tp.PrintfLine("550 5.1.1 mailbox unavailable")
				continue
			}
			_ = tp.PrintfLine("250 OK")
		case "DATA":
			_ = tp.PrintfLine("354 end data with <CR><LF>.<CR><LF>")
			body, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			select {
			case s.data <- string(body):
			default:
			}
			_ = tp.PrintfLine("250 OK queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("250 OK")
		}
	}
}

// silentListener accepts connections and never writes the SMTP greeting.
func silentListener(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestSMTPSenderSend(t *testing.T) {
	srv := startSMTPServer(t, false)
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host: "127.0.0.1",
		Port: srv.port,
		From: "College Admin <no-reply@college.edu>",
	}, logger.Discard())

	err := sender.Send(context.Background(), mailer.Message{To: "s@college.edu", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)

	select {
	case from := <-srv.mailFrom:
		assert.True(t, strings.HasPrefix(from, "MAIL FROM:<no-reply@college.edu>"), from)
	case <-time.After(time.Second):
		t.Fatal("no MAIL command received")
	}

	select {
	case data := <-srv.data:
		assert.Contains(t, data, "Subject: Hi")
		assert.Contains(t, data, "no-reply@college.edu")
		assert.Contains(t, data, "text/html")
		assert.Contains(t, data, "<p>x</p>")
	case <-time.After(time.Second):
		t.Fatal("no message data received")
	}
}

func TestSMTPSenderRejectedRecipient(t *testing.T) {
	srv := startSMTPServer(t, true)
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{Host: "127.0.0.1", Port: srv.port, From: "a@b.co"}, logger.Discard())

	err := sender.Send(context.Background(), mailer.Message{To: "s@college.edu", Subject: "Hi", HTML: "x"})
	assert.ErrorContains(t, err, "failed to send email via smtp")
}

func TestSMTPSenderInvalidRecipient(t *testing.T) {
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{Host: "127.0.0.1", Port: 2525, From: "a@b.co"}, logger.Discard())

	err := sender.Send(context.Background(), mailer.Message{To: "not an address"})
	assert.ErrorContains(t, err, "invalid recipient address")
}

func TestSMTPSenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{}, logger.Discard())
	assert.ErrorIs(t, sender.Send(ctx, mailer.Message{}), context.Canceled)
}

func TestSMTPSenderStalledServer(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 200*time.Millisecond)
			},
		},
		{
			name: "cancel",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(200*time.Millisecond, cancel)
				return ctx, cancel
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := silentListener(t)
			sender := mailer.NewSMTPSender(mailer.SMTPConfig{Host: "127.0.0.1", Port: port, From: "a@b.co"}, logger.Discard())

			ctx, cancel := tt.ctx()
			defer cancel()

			start := time.Now()
			err := sender.Send(ctx, mailer.Message{To: "s@college.edu", Subject: "Hi", HTML: "x"})

			require.Error(t, err)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}
