// Package amqp publishes and consumes low-balance alert messages over
// RabbitMQ.
package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// LowBalanceAlert warns that an account's projected balance dips below
// its warning threshold within the alert horizon. It carries enough for
// a notifier to render a message without querying the database.
type LowBalanceAlert struct {
	AccountID        string          `json:"accountId"`
	AccountName      string          `json:"accountName"`
	Threshold        decimal.Decimal `json:"threshold"`
	FirstWarningDate core.Date       `json:"firstWarningDate"`
	WarningCount     int             `json:"warningCount"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

func NewLowBalanceAlert(accountID, accountName string, threshold decimal.Decimal, warningDates []core.Date) *LowBalanceAlert {
	alert := &LowBalanceAlert{
		AccountID:    accountID,
		AccountName:  accountName,
		Threshold:    threshold,
		WarningCount: len(warningDates),
		GeneratedAt:  time.Now().UTC(),
	}
	if len(warningDates) > 0 {
		alert.FirstWarningDate = warningDates[0]
	}
	return alert
}

func (a *LowBalanceAlert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

func LowBalanceAlertFromJSON(data []byte) (*LowBalanceAlert, error) {
	var alert LowBalanceAlert
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
