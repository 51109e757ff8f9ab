// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/AleutianAI/AleutianBlueprint/services/designer/datatypes"
)

// Fallback values used when no container config accompanies a manifest.
const (
	defaultContainerPort = 3000
	defaultCPURequest    = "100m"
	defaultCPULimit      = "500m"
	defaultMemoryRequest = "128Mi"
	defaultMemoryLimit   = "512Mi"

	servicePort = 80
)

// Probe delay constants. Liveness waits for the process to settle;
// readiness starts checking almost immediately.
const (
	livenessInitialDelaySeconds  = 15
	readinessInitialDelaySeconds = 5
)

const k8sManifestTemplate = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: {{.AppName}}
  namespace: {{.Namespace}}
  labels:
    app: {{.AppName}}
{{- range .Labels}}
    {{.Key}}: {{.Value}}
{{- end}}
{{- if .Annotations}}
  annotations:
{{- range .Annotations}}
    {{.Key}}: {{.Value}}
{{- end}}
{{- end}}
spec:
  replicas: {{.Replicas}}
  strategy:
    type: {{.StrategyType}}
{{- if .RollingUpdate}}
    rollingUpdate:
      maxSurge: 25%
      maxUnavailable: 25%
{{- end}}
  selector:
    matchLabels:
      app: {{.AppName}}
  template:
    metadata:
      labels:
        app: {{.AppName}}
{{- range .Labels}}
        {{.Key}}: {{.Value}}
{{- end}}
    spec:
      containers:
        - name: {{.AppName}}
          image: {{.Image}}
          ports:
            - containerPort: {{.ContainerPort}}
          resources:
            requests:
              cpu: {{.CPURequest}}
              memory: {{.MemoryRequest}}
            limits:
              cpu: {{.CPULimit}}
              memory: {{.MemoryLimit}}
{{- if .HealthCheck}}
          livenessProbe:
            httpGet:
              path: {{.HealthCheck.Path}}
              port: {{.ContainerPort}}
            initialDelaySeconds: {{.LivenessDelay}}
            periodSeconds: {{.HealthCheck.Interval}}
          readinessProbe:
            httpGet:
              path: {{.HealthCheck.Path}}
              port: {{.ContainerPort}}
            initialDelaySeconds: {{.ReadinessDelay}}
            periodSeconds: {{.HealthCheck.Interval}}
{{- end}}
---
apiVersion: v1
kind: Service
metadata:
  name: {{.AppName}}
  namespace: {{.Namespace}}
  labels:
    app: {{.AppName}}
spec:
  type: ClusterIP
  selector:
    app: {{.AppName}}
  ports:
    - port: {{.ServicePort}}
      targetPort: {{.ContainerPort}}
`

var k8sTmpl = template.Must(template.New("k8s").Parse(k8sManifestTemplate))

type k8sData struct {
	AppName        string
	Namespace      string
	Replicas       int
	StrategyType   string
	RollingUpdate  bool
	Labels         []datatypes.LabelPair
	Annotations    []datatypes.LabelPair
	Image          string
	ContainerPort  int
	ServicePort    int
	CPURequest     string
	CPULimit       string
	MemoryRequest  string
	MemoryLimit    string
	HealthCheck    *datatypes.HealthCheck
	LivenessDelay  int
	ReadinessDelay int
}

// NormalizeAppName lowercases a service display name and collapses
// whitespace into hyphens so it is usable as a Kubernetes resource name
// and label value.
func NormalizeAppName(serviceName string) string {
	return strings.ToLower(strings.Join(strings.Fields(serviceName), "-"))
}

// strategyType maps the declared deployment strategy onto the field
// Kubernetes actually understands. BlueGreen and Canary roll out through
// a RollingUpdate deployment; the chosen strategy is preserved as an
// annotation for the rollout tooling to interpret.
func strategyType(s datatypes.DeploymentStrategy) (string, bool) {
	switch s {
	case datatypes.DeployRecreate:
		return "Recreate", false
	case datatypes.DeployRollingUpdate:
		return "RollingUpdate", true
	default:
		return "RollingUpdate", false
	}
}

// K8sManifests renders a Deployment and a ClusterIP Service for one
// manifest, joined by a YAML document separator.
//
// # Description
//
// The workload takes its name and selector from the normalized service
// name, merges the stored labels with a synthesized app label, and pulls
// container port and resource bounds from the optional container config,
// falling back to fixed defaults when it is absent. Probes render only
// when the config carries a health check. Labels and annotations render
// in their stored order.
func K8sManifests(m *datatypes.K8sManifest, serviceName string, cfg *datatypes.ContainerConfig) (string, error) {
	app := NormalizeAppName(serviceName)

	data := k8sData{
		AppName:        app,
		Namespace:      m.Namespace,
		Replicas:       m.Replicas,
		Labels:         filterAppLabel(m.Labels),
		Annotations:    append([]datatypes.LabelPair(nil), m.Annotations...),
		Image:          app + ":latest",
		ContainerPort:  defaultContainerPort,
		ServicePort:    servicePort,
		CPURequest:     defaultCPURequest,
		CPULimit:       defaultCPULimit,
		MemoryRequest:  defaultMemoryRequest,
		MemoryLimit:    defaultMemoryLimit,
		LivenessDelay:  livenessInitialDelaySeconds,
		ReadinessDelay: readinessInitialDelaySeconds,
	}
	if data.Namespace == "" {
		data.Namespace = "default"
	}

	data.StrategyType, data.RollingUpdate = strategyType(m.Strategy)
	if m.Strategy == datatypes.DeployBlueGreen || m.Strategy == datatypes.DeployCanary {
		data.Annotations = append(data.Annotations, datatypes.LabelPair{
			Key:   "blueprint.aleutian.ai/rollout",
			Value: strings.ToLower(string(m.Strategy)),
		})
	}

	if cfg != nil {
		if len(cfg.Ports) > 0 {
			data.ContainerPort = cfg.Ports[0]
		}
		if rl := cfg.ResourceLimits; rl != nil {
			if rl.CPURequest != "" {
				data.CPURequest = rl.CPURequest
			}
			if rl.CPULimit != "" {
				data.CPULimit = rl.CPULimit
			}
			if rl.MemoryRequest != "" {
				data.MemoryRequest = rl.MemoryRequest
			}
			if rl.MemoryLimit != "" {
				data.MemoryLimit = rl.MemoryLimit
			}
		}
		data.HealthCheck = cfg.HealthCheck
	}

	var buf bytes.Buffer
	if err := k8sTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render manifest for %s: %w", serviceName, err)
	}
	return buf.String(), nil
}

// filterAppLabel drops stored pairs keyed "app"; the synthesized app
// label always wins.
func filterAppLabel(labels []datatypes.LabelPair) []datatypes.LabelPair {
	out := make([]datatypes.LabelPair, 0, len(labels))
	for _, l := range labels {
		if l.Key == "app" {
			continue
		}
		out = append(out, l)
	}
	return out
}
