// Package factory manages provider registration and builds ready-to-use
// clients from configuration.
//
// Importing the package registers every provider in pkg/providers. Use
// New().CreateClient for a bare client, or Bootstrap to obtain the shared,
// lazily constructed client used by programs, with logging, usage
// accounting, caching and retries configured from a config.Config.
//
//	boot := factory.NewBootstrap(config.Default(), logger)
//	defer boot.Close()
//
//	client, err := boot.Client(ctx)
package factory
