// Package natspub publishes recalculated attendance records to NATS so
// downstream payroll systems can follow the processed table.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/nats-io/nats.go"
)

// Config holds the NATS connection settings
type Config struct {
	URL           string
	SubjectPrefix string // default: "ponto"
	ClientName    string // default: "ponto-backend"
}

type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials the server. The connection reconnects forever in the
// background; publishes made while disconnected are buffered by the client.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "ponto"
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "ponto-backend"
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return &Publisher{conn: conn, prefix: cfg.SubjectPrefix}, nil
}

// RecordSubject is <prefix>.records.recalculated.<employee>. Subject
// wildcards and separators in the employee id are replaced.
func RecordSubject(prefix, employeeID string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, employeeID)
	return prefix + ".records.recalculated." + token
}

// PublishRecord implements the attendance record publisher.
func (p *Publisher) PublishRecord(ctx context.Context, rec attendance.RecordResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	msg := nats.NewMsg(RecordSubject(p.prefix, rec.EmployeeID))
	msg.Header.Set("Ponto-Date", rec.Date)
	msg.Header.Set("Ponto-Status", rec.Status)
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
