package main

import (
	"fmt"
	"strconv"

	"github.com/franz/relaxis-reader/internal/relaxis"
	"github.com/franz/relaxis-reader/internal/util"
)

// openArchive opens path read-only, tuning the connection when the file
// lives on a network filesystem
func openArchive(path string) (*relaxis.Archive, error) {
	opts := &relaxis.OpenOptions{}
	if info, err := util.DetectNetworkFilesystem(path); err == nil && info.IsNetwork {
		util.DebugLog("%s is on %s (%s), using network settings", path, info.Protocol, info.MountPath)
		opts.NetworkOptimized = true
	}

	a, err := relaxis.OpenWithOptions(path, opts)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	util.DebugLog("Opened %s (format version %d)", path, a.FormatVersion())
	return a, nil
}

// selectProject picks a project by id or name. An empty selector picks
// the first project, as the original demo did.
func selectProject(a *relaxis.Archive, selector string) (relaxis.Project, error) {
	projects, err := a.Projects()
	if err != nil {
		return relaxis.Project{}, fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		return relaxis.Project{}, fmt.Errorf("file contains no projects: %w", util.ErrNotFound)
	}
	if selector == "" {
		return projects[0], nil
	}

	if id, err := strconv.Atoi(selector); err == nil {
		for _, p := range projects {
			if p.ID == id {
				return p, nil
			}
		}
	}
	if p, ok := relaxis.FindProject(projects, selector); ok {
		return p, nil
	}
	return relaxis.Project{}, fmt.Errorf("project %q: %w", selector, util.ErrNotFound)
}
