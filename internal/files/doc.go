// Package files manages the files a pipeline run touches on disk.
//
// Manager stores uploads under run-scoped names (<runID>_<filename>) so
// that concurrent runs never share a path, removes them once a run
// finishes, and resolves downloadable reports without letting a name
// escape the reports directory.
//
// Example usage:
//
//	manager := files.NewManager(paths, logger)
//	path, err := manager.SaveUpload(runID, header.Filename, file)
//	defer manager.RemoveRun(runID)
package files
