package opengl

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

const glslVersion = "#version 330 core"

var (
	//go:embed shaders/quad.vert
	quadVertexSrc string

	//go:embed shaders/composite.frag
	compositeFragmentSrc string

	//go:embed shaders/prelude.glsl
	tracePreludeSrc string

	//go:embed shaders/main.glsl
	traceMainSrc string

	// The built-in trace shader. Trace shaders implement
	//   vec3 trace_sample(Ray ray, inout uint rng)
	// and may use any helper declared by the prelude.
	//go:embed shaders/trace.glsl
	DefaultTraceShader string
)

// Load a trace shader from disk. An empty path selects the built-in shader.
func LoadTraceShader(path string) (string, error) {
	if path == "" {
		return DefaultTraceShader, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("opengl tracer: could not load trace shader: %w", err)
	}
	return string(data), nil
}

// Assemble the trace fragment program from the prelude, the trace shader
// body and the accumulation entrypoint. Any version directive in the trace
// shader is dropped.
func traceProgramSource(traceSrc string) string {
	lines := strings.Split(traceSrc, "\n")
	for index, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#version") {
			lines[index] = ""
		}
	}

	var sb strings.Builder
	sb.WriteString(glslVersion)
	sb.WriteString("\n")
	sb.WriteString(tracePreludeSrc)
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
	sb.WriteString(traceMainSrc)
	return sb.String()
}
