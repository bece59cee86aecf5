package app

import (
	"github.com/mkral/tempmail/internal/provider"
	"github.com/mkral/tempmail/internal/provider/dropmail"
	"github.com/mkral/tempmail/internal/provider/guerrilla"
	"github.com/mkral/tempmail/internal/provider/hydramail"
	"github.com/mkral/tempmail/internal/provider/tempmaillol"
)

// DefaultRegistry returns a registry holding every built-in provider.
func DefaultRegistry() *provider.Registry {
	return provider.NewRegistry(map[string]provider.Factory{
		guerrilla.Key:       func() provider.Provider { return guerrilla.New() },
		hydramail.MailGwKey: func() provider.Provider { return hydramail.NewMailGw() },
		hydramail.MailTmKey: func() provider.Provider { return hydramail.NewMailTm() },
		dropmail.Key:        func() provider.Provider { return dropmail.New() },
		tempmaillol.Key:     func() provider.Provider { return tempmaillol.New() },
	})
}
