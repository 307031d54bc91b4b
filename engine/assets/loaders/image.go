package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/memory"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

const ImageTypeName = "image"

// ImageExtensions are tried in order when looking for an image file.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".webp"}

var ErrImageNotFound = errors.New("image file not found")

// ImageLoader decodes images into tightly packed RGBA8 pixels.
type ImageLoader struct {
	// Memory accounts pixel buffers. May be nil.
	Memory *memory.MemorySystem
}

func (il *ImageLoader) TypeName() string { return ImageTypeName }

func (il *ImageLoader) TypePath() string { return "textures" }

func (il *ImageLoader) Load(dir string, name string, params interface{}) (*metadata.Resource, error) {
	flipY := true
	if typedParams, ok := params.(*metadata.ImageResourceParams); ok && typedParams != nil {
		flipY = typedParams.FlipY
	}

	path, err := findImage(dir, name)
	if err != nil {
		core.LogError("image loader failed to find file '%s' in '%s'", name, dir)
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		core.LogError("image loader failed to decode '%s': %s", path, err)
		return nil, err
	}
	core.LogDebug("decoded %s image '%s'", format, path)

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	data := &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(bounds.Dx()),
		Height:       uint32(bounds.Dy()),
	}
	data.Pixels = il.Memory.Allocate(uint64(len(rgba.Pix)), memory.MemoryTagTexture)
	copyRows(data.Pixels, rgba, flipY)

	return &metadata.Resource{
		LoaderName: ImageTypeName,
		Name:       name,
		FullPath:   path,
		DataSize:   uint64(len(data.Pixels)),
		Data:       data,
	}, nil
}

func (il *ImageLoader) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return fmt.Errorf("image loader Unload called with nil resource")
	}
	if data, ok := resource.Data.(*metadata.ImageResourceData); ok && data != nil {
		il.Memory.Free(data.Pixels, memory.MemoryTagTexture)
		data.Pixels = nil
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

func findImage(dir, name string) (string, error) {
	// An explicit extension wins.
	if filepath.Ext(name) != "" {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	for _, ext := range ImageExtensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s in %s: %w", name, dir, ErrImageNotFound)
}

// copyRows copies the pixel rows of src into dst, bottom row first when flip is set.
func copyRows(dst []uint8, src *image.RGBA, flip bool) {
	height := src.Bounds().Dy()
	rowSize := src.Bounds().Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+rowSize]
		dstY := y
		if flip {
			dstY = height - 1 - y
		}
		copy(dst[dstY*rowSize:(dstY+1)*rowSize], srcRow)
	}
}

// HasTransparency reports whether any pixel of an RGBA buffer is not fully opaque.
func HasTransparency(pixels []uint8, channelCount uint8) bool {
	if channelCount < 4 {
		return false
	}
	for i := int(channelCount) - 1; i < len(pixels); i += int(channelCount) {
		if pixels[i] < 255 {
			return true
		}
	}
	return false
}
