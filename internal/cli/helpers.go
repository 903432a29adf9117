package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/45p1d4/ddogctl/internal/api"
	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/timeexpr"
)

// InvalidRangeError reports a resolved --to before the resolved --from.
// Raised before any network call.
type InvalidRangeError struct {
	From time.Time
	To   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("--to (%s) must be >= --from (%s)",
		timeexpr.ISO8601(e.To), timeexpr.ISO8601(e.From))
}

// resolveRange resolves both ends of a time range against one reference
// instant and enforces to >= from. Range validation lives here at the
// call-site layer, not in the resolver.
func (a *App) resolveRange(from, to string) (time.Time, time.Time, error) {
	reference := a.now()
	dtFrom, err := timeexpr.Resolve(from, reference)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	dtTo, err := timeexpr.Resolve(to, reference)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dtTo.Before(dtFrom) {
		return time.Time{}, time.Time{}, &InvalidRangeError{From: dtFrom, To: dtTo}
	}
	return dtFrom, dtTo, nil
}

// debugDump prints a labelled JSON dump when debug is on.
func (a *App) debugDump(debug bool, label string, v any) {
	if !debug {
		return
	}
	render.Rule(a.stdout, label)
	render.JSON(a.stdout, v)
}

// debugError surfaces API error details before the command exits
// non-zero. Without --debug errors collapse to the generic message the
// entrypoint prints.
func (a *App) debugError(debug bool, err error) {
	if !debug || err == nil {
		return
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		render.Rule(a.stdout, fmt.Sprintf("HTTP %d", apiErr.StatusCode))
		render.JSON(a.stdout, apiErr.Payload)
		return
	}
	fmt.Fprintf(a.stdout, "error: %v\n", err)
}
