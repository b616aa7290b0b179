//go:build wireinject
// +build wireinject

package di

import (
	"AlgoReport/internal/usecase"
	"AlgoReport/pkg/config"
	"AlgoReport/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		PipelineSet,

		// HTTP surface
		ProvideRunLimiter,
		ProvideReportsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializeRunner wires the pipeline alone for one-shot command line runs.
func InitializeRunner(cfg *config.Config) (*usecase.ReportRunner, func(), error) {
	wire.Build(PipelineSet)
	return &usecase.ReportRunner{}, nil, nil
}
