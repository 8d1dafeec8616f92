package server

import (
	"log"

	"blockview/internal/assembly"
)

// LogReport writes a walk summary and one warning per skipped block.
func LogReport(l *log.Logger, rep assembly.Report) {
	l.Printf("assembled %d blocks: %d meshes, %d connectors", rep.Blocks, rep.Meshes, rep.Connectors)
	for _, d := range rep.Diagnostics {
		l.Printf("Warning: skipped %v", d)
	}
}
