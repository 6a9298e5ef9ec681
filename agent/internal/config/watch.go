package config

import (
	"context"

	"github.com/swarmreport/swarmreport/pkg/configwatch"
)

// Watch reloads the reporter config at path whenever it changes. The
// environment override is re-applied on every reload.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	return configwatch.Watch(ctx, path, "reporter config", Load, onChange)
}
