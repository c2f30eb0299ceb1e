package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/settings"
)

// Command is an operator request from the control surface.
type Command interface {
	command()
}

// SetBrightness changes the global LED brightness (0-255). It is applied
// to the strip immediately.
type SetBrightness struct{ Value int }

// SetStartTime changes the first active hour (0-23). It takes effect at the
// next evaluation.
type SetStartTime struct{ Hour int }

// SetEndTime changes the first inactive hour (0-23). It takes effect at the
// next evaluation.
type SetEndTime struct{ Hour int }

// TriggerFetch runs one evaluation now.
type TriggerFetch struct{}

func (SetBrightness) command() {}
func (SetStartTime) command()  {}
func (SetEndTime) command()    {}
func (TriggerFetch) command()  {}

// Result describes what a command did.
type Result struct {
	Setting string `json:"setting,omitempty"`
	Value   int    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Execute applies cmd. Setting commands return the settings store errors
// (ErrUnknownSetting, ErrInvalidValue, ErrPersistWriteFailed); when only the
// durable write fails the new value is already in effect. TriggerFetch
// returns ErrBusy if a cycle is in flight; it is not queued.
func (c *Controller) Execute(ctx context.Context, cmd Command) (Result, error) {
	switch cmd := cmd.(type) {
	case SetBrightness:
		return c.setBrightness(ctx, cmd.Value)
	case SetStartTime:
		return c.setSetting(ctx, settings.StartTime, cmd.Hour)
	case SetEndTime:
		return c.setSetting(ctx, settings.EndTime, cmd.Hour)
	case TriggerFetch:
		return c.trigger(ctx)
	default:
		return Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (c *Controller) setBrightness(ctx context.Context, value int) (Result, error) {
	err := c.settings.Set(ctx, settings.LEDBrightness, value)
	if err != nil && !errors.Is(err, domain.ErrPersistWriteFailed) {
		return Result{}, err
	}
	if rerr := c.renderer.SetBrightness(uint8(value)); rerr != nil {
		return Result{}, errors.Join(err, fmt.Errorf("apply brightness: %w", rerr))
	}
	c.logger.Info("brightness changed", "value", value)
	return Result{Setting: settings.LEDBrightness, Value: value, Message: "brightness updated"}, err
}

func (c *Controller) setSetting(ctx context.Context, name string, value int) (Result, error) {
	err := c.settings.Set(ctx, name, value)
	if err != nil && !errors.Is(err, domain.ErrPersistWriteFailed) {
		return Result{}, err
	}
	c.logger.Info("active window changed", "setting", name, "value", value)
	return Result{Setting: name, Value: value, Message: name + " updated"}, err
}

// trigger runs the evaluation detached from the caller's cancellation so a
// dropped HTTP client cannot abort a cycle halfway.
func (c *Controller) trigger(ctx context.Context) (Result, error) {
	err := c.Evaluate(context.WithoutCancel(ctx))
	switch {
	case err == nil:
		c.metrics.Triggers.WithLabelValues("accepted").Inc()
	case errors.Is(err, domain.ErrBusy):
		c.metrics.Triggers.WithLabelValues("busy").Inc()
		return Result{}, err
	default:
		c.metrics.Triggers.WithLabelValues("error").Inc()
		return Result{}, err
	}
	return Result{Message: "Metar fetch triggered."}, nil
}
