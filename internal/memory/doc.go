// Package memory derives the Go soft memory limit from the container limit.
//
// Thumbnail generation decodes full-size images, so without GOMEMLIMIT a
// burst of cold catalog requests can push the heap past a container limit
// before the collector reacts. Set MEMORY_LIMIT from the Kubernetes Downward
// API:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
//
// An explicit GOMEMLIMIT always wins. MEMORY_RATIO (default 0.85) is the share
// of the container limit given to the Go heap.
package memory
