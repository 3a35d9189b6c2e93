package platform

import (
	"github.com/YaroslavMizgirev/shelf/pkg/adapters/fs"
	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

// New creates a service over the library at uri.
//
//	svc, err := shelf.New("./library", shelf.WithVersioning(false))
//
// The catalog is not loaded; call Service.Load.
func New(uri string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := initRepository(uri, o)
	if err != nil {
		return nil, err
	}

	strict, _ := o.config["strict"].(bool)
	codecs := fs.DefaultSerializers(strict)
	for format, c := range o.serializers {
		codecs[format] = c
	}

	catalog, _ := o.config["catalog"].(string)
	eventBuffer, _ := o.config["event_buffer"].(int)

	return core.NewService(repo,
		core.WithCodecs(codecs),
		core.WithDocument(catalog),
		core.WithStrictLoading(strict),
		core.WithConfirmer(o.confirmer),
		core.WithServiceLogger(o.logger),
		core.WithEventBufferSize(eventBuffer),
	), nil
}
