package userforms

import (
	"io/fs"

	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
)

// RuntimeAssetsFS exposes the browser controller and stylesheet so Go
// applications can serve them next to the rendered forms.
//
// Typical mount:
//
//	mux.Handle("/runtime/",
//	  http.StripPrefix("/runtime/",
//	    http.FileServerFS(userforms.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
