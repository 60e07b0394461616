package requirements

import (
	"context"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
)

// Checker validates the host toolchain before anything is provisioned
type Checker interface {
	Check(ctx context.Context, cfg config.Config) Report
}
