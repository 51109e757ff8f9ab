// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generate renders container and orchestration artifacts from
// design data.
//
// All generators are pure string builders: no I/O, no clock, no
// randomness. The same input always produces byte-identical output,
// which keeps snapshot tests meaningful.
package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// dockerfileTemplate renders both build flavors. Secret environment
// variables are emitted as comments only; their values never reach the
// generated text.
const dockerfileTemplate = `# Dockerfile for {{.ServiceName}}
# Generated by Aleutian Blueprint. Review before production use.
{{if .MultiStage}}
# ---- Build stage ----
FROM {{.BaseImage}} AS build
WORKDIR /app
COPY package*.json ./
RUN npm ci
COPY . .
RUN npm run build

# ---- Runtime stage ----
FROM {{.RuntimeImage}}
WORKDIR /app
COPY --from=build /app/dist ./dist
COPY --from=build /app/node_modules ./node_modules
COPY --from=build /app/package.json ./package.json
{{else}}
FROM {{.BaseImage}}
WORKDIR /app
COPY package*.json ./
RUN npm ci --omit=dev
COPY . .
{{end}}
{{- range .EnvVars}}
{{- if .IsSecret}}
# {{.Key}} is a secret and is managed externally; inject it at deploy time.
{{- else}}
ENV {{.Key}}={{.Value}}
{{- end}}
{{- end}}
{{- range .Ports}}
EXPOSE {{.}}
{{- end}}
{{- if .HealthCheck}}
HEALTHCHECK --interval={{.HealthCheck.Interval}}s --timeout=3s --retries=3 \
  CMD wget -qO- http://localhost:{{.HealthCheck.Port}}{{.HealthCheck.Path}} || exit 1
{{- end}}
RUN addgroup -S blueprint && adduser -S blueprint -G blueprint
USER blueprint
{{- if .MultiStage}}
CMD ["node", "dist/index.js"]
{{- else}}
CMD ["node", "src/index.js"]
{{- end}}
`

var dockerfileTmpl = template.Must(template.New("dockerfile").Parse(dockerfileTemplate))

// dockerfileData is the precomputed template input.
type dockerfileData struct {
	ServiceName  string
	MultiStage   bool
	BaseImage    string
	RuntimeImage string
	EnvVars      []datatypes.EnvVar
	Ports        []int
	HealthCheck  *datatypes.HealthCheck
}

// SlimImage derives the runtime image for a multi-stage build from the
// build image by swapping the "-alpine" and "-slim" suffix conventions.
// Images carrying neither suffix are used unchanged.
func SlimImage(base string) string {
	switch {
	case strings.Contains(base, "-alpine"):
		return strings.Replace(base, "-alpine", "-slim", 1)
	case strings.Contains(base, "-slim"):
		return strings.Replace(base, "-slim", "-alpine", 1)
	default:
		return base
	}
}

// Dockerfile renders a container build descriptor for one service.
//
// # Description
//
// Multi-stage configs produce a build stage from the configured base
// image and a runtime stage from its slimmed variant, copying build
// artifacts across. Single-stage configs produce one stage running the
// source entry point directly. Environment variables and exposed ports
// render in input order without deduplication; a health-check directive
// appears exactly once when the descriptor is present.
func Dockerfile(cfg *datatypes.ContainerConfig, serviceName string) (string, error) {
	data := dockerfileData{
		ServiceName:  serviceName,
		MultiStage:   cfg.BuildType == datatypes.BuildMultiStage,
		BaseImage:    cfg.BaseImage,
		RuntimeImage: SlimImage(cfg.BaseImage),
		EnvVars:      cfg.EnvVars,
		Ports:        cfg.Ports,
		HealthCheck:  cfg.HealthCheck,
	}

	var buf bytes.Buffer
	if err := dockerfileTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render Dockerfile for %s: %w", serviceName, err)
	}
	return buf.String(), nil
}
