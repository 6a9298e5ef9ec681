package config

import (
	"context"

	"github.com/swarmreport/swarmreport/pkg/configwatch"
)

// Watch reloads the sentinel config at path whenever it changes and passes
// the validated result to onChange. Invalid reloads are logged and skipped.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return configwatch.Watch(ctx, path, "sentinel config", Load, onChange)
}
