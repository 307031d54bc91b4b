package opengl

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

//go:embed shaders/*.glsl
var shaderSources embed.FS

const (
	materialVertexShader   = "shaders/builtin.material.vert.glsl"
	materialFragmentShader = "shaders/builtin.material.frag.glsl"
)

type materialShader struct {
	program uint32

	projection     int32
	view           int32
	model          int32
	diffuseColour  int32
	ambientColour  int32
	diffuseTexture int32
}

func newMaterialShader() (*materialShader, error) {
	vert, err := shaderSources.ReadFile(materialVertexShader)
	if err != nil {
		return nil, err
	}
	frag, err := shaderSources.ReadFile(materialFragmentShader)
	if err != nil {
		return nil, err
	}
	program, err := compileProgram(string(vert), string(frag))
	if err != nil {
		return nil, err
	}
	s := &materialShader{program: program}
	s.projection = uniformLocation(program, "projection")
	s.view = uniformLocation(program, "view")
	s.model = uniformLocation(program, "model")
	s.diffuseColour = uniformLocation(program, "diffuse_colour")
	s.ambientColour = uniformLocation(program, "ambient_colour")
	s.diffuseTexture = uniformLocation(program, "diffuse_texture")
	return s, nil
}

func (s *materialShader) use() {
	gl.UseProgram(s.program)
}

func (s *materialShader) destroy() {
	gl.DeleteProgram(s.program)
	s.program = 0
}

func uniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// shaders can be deleted after linking
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}
