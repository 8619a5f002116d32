package service

import (
	"encoding/json"
	"time"

	"enroll/internal/registration/backend"
	"enroll/internal/registration/countdown"
	"enroll/internal/registration/models"
	id "enroll/pkg/domain"
)

// idleScheduler hands out tickers that never fire, so countdowns stay at
// their starting value for the whole test.
type idleScheduler struct{}

func (idleScheduler) NewTicker(time.Duration) countdown.Ticker { return idleTicker{} }

type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

func newIdleSession(now time.Time) *models.Session {
	return models.NewSession(id.NewSessionID(), now, countdown.New(countdown.WithScheduler(idleScheduler{})))
}

func testForm() *models.UserData {
	return &models.UserData{
		Document:     "1020304050",
		DocumentType: "CC",
		Mail:         "ana@example.com",
		ConfirmMail:  "ana@example.com",
		CellPhone:    "3001234567",
		Names:        "Ana Gomez",
		BusinessName: "Tienda Ana",
		Address:      "Calle 1",
		Segment:      models.SegmentCustomers,
		BirthDate:    "1990-05-01",
	}
}

func okEnvelope(message string, data any) *backend.Envelope {
	env := &backend.Envelope{Success: true, Message: message}
	if data != nil {
		raw, _ := json.Marshal(data)
		env.Data = raw
	}
	return env
}

func failEnvelope(message string, data any) *backend.Envelope {
	env := okEnvelope(message, data)
	env.Success = false
	return env
}

func registerState(userID, state string) map[string]string {
	return map[string]string{"UserId": userID, "StateName": state}
}

func fixedTxIDs(ids ...id.TransactionID) func() id.TransactionID {
	i := 0
	return func() id.TransactionID {
		tx := ids[i%len(ids)]
		i++
		return tx
	}
}
