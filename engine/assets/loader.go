package assets

import "github.com/spaghettifunk/hearth/engine/renderer/metadata"

// Loader turns files of one resource type into resources.
type Loader interface {
	// TypeName is the key the loader is registered under.
	TypeName() string
	// TypePath is the directory below the asset base path holding this type.
	TypePath() string
	// Load reads the resource called name from dir.
	Load(dir string, name string, params interface{}) (*metadata.Resource, error)
	Unload(resource *metadata.Resource) error
}
