package datawarehouse

import (
	"context"
	"net/url"
	"testing"

	"github.com/straye-as/project-desk-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_NotConfigured(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	client, err := NewClient(ctx, nil, logger)
	assert.NoError(t, err)
	assert.Nil(t, client)

	client, err = NewClient(ctx, &config.DataWarehouseConfig{Enabled: false}, logger)
	assert.NoError(t, err)
	assert.Nil(t, client)

	client, err = NewClient(ctx, &config.DataWarehouseConfig{Enabled: true, URL: "host:1433/db", User: "u"}, logger)
	assert.NoError(t, err)
	assert.Nil(t, client, "missing password skips the connection")
}

func TestNewClient_RejectsUnsafeTableName(t *testing.T) {
	_, err := NewClient(context.Background(), &config.DataWarehouseConfig{
		Enabled:       true,
		URL:           "host:1433/db",
		User:          "u",
		Password:      "p",
		PaymentsTable: "dbo.Payments; DROP TABLE x",
	}, zap.NewNop())
	assert.ErrorContains(t, err, "invalid payments table")
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.False(t, c.IsEnabled())
	assert.NoError(t, c.Close())
	assert.Equal(t, "disabled", c.HealthCheck(context.Background()).Status)

	_, err := c.ExecuteQuery(context.Background(), "SELECT 1")
	assert.Error(t, err)
}

func TestBuildConnectionString(t *testing.T) {
	s := buildConnectionString(&config.DataWarehouseConfig{URL: "dw.example.com/finance", User: "reader", Password: "p@ss"})

	u, err := url.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "dw.example.com:1433", u.Host)
	assert.Equal(t, "reader", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "finance", u.Query().Get("database"))
	assert.Equal(t, "ReadOnly", u.Query().Get("ApplicationIntent"))

	s = buildConnectionString(&config.DataWarehouseConfig{URL: "dw:14330", User: "r", Password: "p"})
	u, err = url.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "dw:14330", u.Host)
	assert.Empty(t, u.Query().Get("database"))
}

func TestParseProjectPayments(t *testing.T) {
	rows := []map[string]interface{}{
		{"ProjectNumber": "P-001", "Received": []byte("1250000.50")},
		{"ProjectNumber": []byte(" P-002 "), "Received": int64(300)},
		{"ProjectNumber": nil, "Received": 10.0},
		{"ProjectNumber": "P-003", "Received": nil},
	}

	payments, err := parseProjectPayments(rows)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, ProjectPayment{ProjectNumber: "P-001", Received: 1250000.50}, payments[0])
	assert.Equal(t, ProjectPayment{ProjectNumber: "P-002", Received: 300}, payments[1])
	assert.Equal(t, ProjectPayment{ProjectNumber: "P-003", Received: 0}, payments[2])

	_, err = parseProjectPayments([]map[string]interface{}{{"ProjectNumber": "P-9", "Received": []byte("abc")}})
	assert.Error(t, err)
}

func TestPaymentsQuery(t *testing.T) {
	q := PaymentsQuery("dbo.ProjectPayments")
	assert.Contains(t, q, "FROM dbo.ProjectPayments")
	assert.Contains(t, q, "GROUP BY ProjectNumber")
}
