package api

import (
	"github.com/JaimeStill/numeral/internal/models"
	"github.com/JaimeStill/numeral/internal/submissions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Models      models.System
	Submissions submissions.System
}

// NewDomain creates all domain systems from the API runtime. The submission
// store is durable when a database is configured and volatile otherwise;
// archive storage, when configured, wraps whichever backend was chosen.
func NewDomain(runtime *Runtime) *Domain {
	var store submissions.System
	if runtime.Database != nil {
		store = submissions.NewRepository(runtime.Database.Connection(), runtime.Logger)
	} else {
		store = submissions.NewMemory(runtime.Logger)
	}

	if runtime.Storage != nil {
		store = submissions.WithArchive(store, runtime.Storage, runtime.Logger)
	}

	backend := "memory"
	if runtime.Database != nil {
		backend = string(runtime.Database.Dialect())
	}
	runtime.Logger.Info("submission store selected",
		"backend", backend,
		"archive", runtime.Storage != nil,
	)

	return &Domain{
		Models:      runtime.Models,
		Submissions: store,
	}
}
