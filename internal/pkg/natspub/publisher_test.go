package natspub

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/ponto-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSubject(t *testing.T) {
	tests := []struct {
		employeeID string
		want       string
	}{
		{"E001", "ponto.records.recalculated.E001"},
		{"dept.42", "ponto.records.recalculated.dept_42"},
		{"a*b>c d", "ponto.records.recalculated.a_b_c_d"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RecordSubject("ponto", tt.employeeID))
	}
}

func TestConnectUnreachable(t *testing.T) {
	_, err := Connect(Config{URL: "nats://127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect nats")
}

func TestPublishRecordCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Publisher{prefix: "ponto"}
	err := p.PublishRecord(ctx, attendance.RecordResponse{EmployeeID: "E001"})
	assert.ErrorIs(t, err, context.Canceled)
}
