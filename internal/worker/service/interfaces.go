package service

import (
	"context"

	"github.com/resale-ops/internal/domain/shared"
)

// ImportProcessor runs queued supplier import requests.
type ImportProcessor interface {
	ProcessImport(ctx context.Context, request *shared.ImportRequest) error
}
