package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
)

// collectFiles expands file and directory arguments into suite files.
// Directories are walked recursively.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && isSuiteFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// isSuiteFile reports whether path looks like a suite file rather than a
// keyword definition, locator store or generated artifact.
func isSuiteFile(path string) bool {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	switch name {
	case "locators.json", "summary.json", "package.json":
		return false
	}
	if strings.HasSuffix(name, ".keyword.json") {
		return false
	}
	for _, cfgName := range config.ConfigFilenames {
		if name == cfgName {
			return false
		}
	}
	return true
}

// loadJobs parses every suite file into a single flat job list. Jobs
// without a name inherit one from their file and position.
func loadJobs(files []string) ([]*parser.Job, error) {
	var jobs []*parser.Job
	for _, file := range files {
		parsed, err := parser.ParseFile(file)
		if err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(filepath.Base(file), ".json")
		for i, job := range parsed {
			if job.Name == "" {
				if len(parsed) == 1 {
					job.Name = base
				} else {
					job.Name = fmt.Sprintf("%s #%d", base, i+1)
				}
			}
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// loadJobsFromStdin supports piping a suite into `flowright run -`.
func loadJobsFromStdin(r io.Reader) ([]*parser.Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	jobs, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	for i, job := range jobs {
		if job.Name == "" {
			job.Name = fmt.Sprintf("stdin #%d", i+1)
		}
	}
	return jobs, nil
}
