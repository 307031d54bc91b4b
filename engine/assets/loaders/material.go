package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

const (
	MaterialTypeName = "material"
	// MaterialExtension is the file extension of material configs.
	MaterialExtension = ".hmt"
)

type MaterialLoader struct{}

func (ml *MaterialLoader) TypeName() string { return MaterialTypeName }

func (ml *MaterialLoader) TypePath() string { return "materials" }

func (ml *MaterialLoader) Load(dir string, name string, params interface{}) (*metadata.Resource, error) {
	path := filepath.Join(dir, name+MaterialExtension)
	file, err := os.Open(path)
	if err != nil {
		core.LogError("material loader unable to open material file for reading: '%s'", path)
		return nil, err
	}
	defer file.Close()

	mCfg, err := ParseMaterialConfig(file, path, name)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		LoaderName: MaterialTypeName,
		Name:       name,
		FullPath:   path,
		DataSize:   uint64(unsafe.Sizeof(metadata.MaterialConfig{})),
		Data:       mCfg,
	}, nil
}

func (ml *MaterialLoader) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return fmt.Errorf("material loader Unload called with nil resource")
	}
	resource.Data = nil
	resource.DataSize = 0
	return nil
}

// ParseMaterialConfig reads a material config made of key = value lines.
// source is only used in log messages. Unparseable lines are skipped with a
// warning; only read errors fail the parse.
func ParseMaterialConfig(r io.Reader, source string, name string) (*metadata.MaterialConfig, error) {
	// Set some defaults.
	materialConfig := &metadata.MaterialConfig{
		Name:          name,
		AutoRelease:   true,
		DiffuseColour: math.NewVec4One(),
	}

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		// Split key-value pairs by the first "=" sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			core.LogWarn("Potential formatting issue found in file '%s': '=' token not found. Skipping line %d.", source, lineNumber)
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch key {
		case "version":
			version, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				core.LogWarn("Error parsing version in file '%s'. Skipping line %d.", source, lineNumber)
				continue
			}
			materialConfig.Version = uint32(version)
		case "name":
			if len(value) >= metadata.MaterialNameMaxLength {
				core.LogWarn("material name in file '%s' is longer than %d bytes and will be truncated.", source, metadata.MaterialNameMaxLength-1)
			}
			materialConfig.Name = value
		case "diffuse_name":
			if len(value) >= metadata.TextureNameMaxLength {
				core.LogWarn("diffuse texture name in file '%s' is longer than %d bytes and will be truncated.", source, metadata.TextureNameMaxLength-1)
			}
			materialConfig.DiffuseMapName = value
		case "diffuse_color", "diffuse_colour":
			colour, err := parseVec4(value)
			if err != nil {
				core.LogWarn("Error parsing diffuse_colour in file '%s'. Using default of white instead.", source)
				materialConfig.DiffuseColour = math.NewVec4One()
				continue
			}
			materialConfig.DiffuseColour = clampColour(colour, source)
		case "auto_release", "autorelease":
			autoRelease, err := strconv.ParseBool(value)
			if err != nil {
				core.LogWarn("Error parsing auto_release in file '%s'. Skipping line %d.", source, lineNumber)
				continue
			}
			materialConfig.AutoRelease = autoRelease
		default:
			core.LogDebug("Unknown key '%s' found in file '%s'. Skipping...", key, source)
		}
	}
	if err := scanner.Err(); err != nil {
		core.LogError("material loader failed reading '%s': %s", source, err)
		return nil, err
	}
	return materialConfig, nil
}

func parseVec4(value string) (math.Vec4, error) {
	fields := strings.Fields(value)
	if len(fields) != 4 {
		return math.Vec4{}, fmt.Errorf("expected 4 values, got %d", len(fields))
	}
	var out [4]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math.Vec4{}, err
		}
		out[i] = float32(v)
	}
	return math.NewVec4(out[0], out[1], out[2], out[3]), nil
}

// clampColour keeps every channel within [0.0, 1.0].
func clampColour(c math.Vec4, source string) math.Vec4 {
	clamped := c.Saturate()
	if clamped != c {
		core.LogWarn("diffuse_colour values in file '%s' must be between 0.0 and 1.0, clamping.", source)
	}
	return clamped
}
