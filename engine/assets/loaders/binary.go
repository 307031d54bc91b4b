package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

const BinaryTypeName = "binary"

// BinaryLoader reads files verbatim. It is not registered by default; games
// register it to load their own blobs under <base>/binary.
type BinaryLoader struct{}

func (bl *BinaryLoader) TypeName() string { return BinaryTypeName }

func (bl *BinaryLoader) TypePath() string { return "binary" }

func (bl *BinaryLoader) Load(dir string, name string, params interface{}) (*metadata.Resource, error) {
	path := filepath.Join(dir, name)
	buf, err := os.ReadFile(path)
	if err != nil {
		core.LogError("binary loader unable to read '%s'", path)
		return nil, err
	}
	return &metadata.Resource{
		LoaderName: BinaryTypeName,
		Name:       name,
		FullPath:   path,
		DataSize:   uint64(len(buf)),
		Data:       buf,
	}, nil
}

func (bl *BinaryLoader) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return fmt.Errorf("binary loader Unload called with nil resource")
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}
