package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// A linked shader program with a uniform location cache.
type program struct {
	name      string
	handle    uint32
	locations map[string]int32
}

// Compile and link a program from vertex and fragment shader sources.
func newProgram(name, vertexSrc, fragmentSrc string) (*program, error) {
	vs, err := compileShader(name, vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(name, fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(fs)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vs)
	gl.AttachShader(handle, fs)
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(handle, logLen, nil, &log[0])
		gl.DeleteProgram(handle)
		return nil, fmt.Errorf("%w (%s): %s", ErrProgramLink, name, strings.TrimRight(string(log), "\x00"))
	}

	return &program{
		name:      name,
		handle:    handle,
		locations: make(map[string]int32),
	}, nil
}

func compileShader(name, src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w (%s): %s", ErrShaderCompile, name, strings.TrimRight(string(log), "\x00"))
	}
	return shader, nil
}

func (p *program) use() {
	gl.UseProgram(p.handle)
}

// Lookup a uniform location. Unknown uniforms resolve to -1 which GL
// silently ignores; user supplied trace shaders may not reference all of them.
func (p *program) location(name string) int32 {
	loc, exists := p.locations[name]
	if !exists {
		loc = gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
		p.locations[name] = loc
	}
	return loc
}

func (p *program) setInt(name string, v int32) {
	gl.Uniform1i(p.location(name), v)
}

func (p *program) setUint(name string, v uint32) {
	gl.Uniform1ui(p.location(name), v)
}

func (p *program) setFloat(name string, v float32) {
	gl.Uniform1f(p.location(name), v)
}

func (p *program) setVec3(name string, v [3]float32) {
	gl.Uniform3f(p.location(name), v[0], v[1], v[2])
}

func (p *program) release() {
	if p == nil || p.handle == 0 {
		return
	}
	gl.DeleteProgram(p.handle)
	p.handle = 0
}
