// package services defines the gateway to the playlist generation backend
package services

import (
	"context"

	"github.com/desertthunder/playlistinator/internal/models"
)

// Gateway performs the generate call and folds every outcome into a [models.GenerationResult].
//
// Implementations never return an error; failures are encoded as Success=false.
type Gateway interface {
	Generate(ctx context.Context) models.GenerationResult
}

// Caller is the error-returning form of [Gateway], used where a transport
// failure must be told apart from a logical one (the relay).
type Caller interface {
	Do(ctx context.Context) (models.GenerationResult, error)
}

var (
	_ Gateway = (*GatewayService)(nil)
	_ Caller  = (*GatewayService)(nil)
)
