package delivery

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// FailureReason is the fixed diagnostic recorded for simulated failures
const FailureReason = "Simulated failure"

// ErrSimulatedFailure is returned by the simulated gateway for the failing
// share of attempts
var ErrSimulatedFailure = errors.New(FailureReason)

// Gateway represents a message delivery gateway. The campaign pipeline only
// depends on this interface; real vendor integrations would live behind it.
type Gateway interface {
	Send(to, subject, body string) (string, error)
}

// SimulatedGateway stands in for a real email vendor. Each attempt succeeds
// with the configured probability and fails with a fixed reason otherwise.
type SimulatedGateway struct {
	SuccessRate float64
}

// NewSimulatedGateway creates a simulated gateway with the given success rate
func NewSimulatedGateway(successRate float64) Gateway {
	return &SimulatedGateway{SuccessRate: successRate}
}

// Send simulates one delivery attempt
func (g *SimulatedGateway) Send(to, subject, body string) (string, error) {
	if rand.Float64() < g.SuccessRate {
		return fmt.Sprintf("SIM-MSG-%d", time.Now().UnixNano()), nil
	}
	return "", ErrSimulatedFailure
}
