package datawarehouse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ProjectPayment is the total amount received for one project number
type ProjectPayment struct {
	ProjectNumber string
	Received      float64
}

// PaymentsQuery returns the aggregate query for the configured payments table
func PaymentsQuery(table string) string {
	return fmt.Sprintf(
		"SELECT ProjectNumber, SUM(Amount) AS Received FROM %s WHERE ProjectNumber IS NOT NULL GROUP BY ProjectNumber",
		table,
	)
}

// GetProjectPayments returns the received total per project number
func (c *Client) GetProjectPayments(ctx context.Context) ([]ProjectPayment, error) {
	rows, err := c.ExecuteQuery(ctx, PaymentsQuery(c.paymentsTable))
	if err != nil {
		return nil, err
	}
	return parseProjectPayments(rows)
}

// parseProjectPayments converts warehouse rows, skipping rows without a project number
func parseProjectPayments(rows []map[string]interface{}) ([]ProjectPayment, error) {
	payments := make([]ProjectPayment, 0, len(rows))
	for i, row := range rows {
		number := strings.TrimSpace(toString(row["ProjectNumber"]))
		if number == "" {
			continue
		}
		received, err := toFloat(row["Received"])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, number, err)
		}
		payments = append(payments, ProjectPayment{ProjectNumber: number, Received: received})
	}
	return payments, nil
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// toFloat handles the types the sqlserver driver returns for numeric columns.
// DECIMAL/MONEY arrive as []byte.
func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case []byte:
		return strconv.ParseFloat(string(t), 64)
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}
