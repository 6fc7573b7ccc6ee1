// Package yamlsrc loads declarative Mykefiles written in YAML.
//
//	imports: [ci/Mykefile.yaml]
//	modules: [tasks.docker]
//	tasks:
//	  - name: build
//	    description: Build the image.
//	    parents: docker
//	    params:
//	      - { name: tag, default: latest }
//	    shell: docker build -t app:{{ .tag }} .
//	  - name: lint
//	    cmd: [golangci-lint, run]
//	    timeout: 5m
//
// Every task is a shell task. Shell strings and cmd elements are
// text/template templates executed against the task arguments.
package yamlsrc
