package analysis

import (
	"veranda.build/pkg/analysis/artifact"
	"veranda.build/pkg/ds/nestedset"
)

// Runfiles is the set of artifacts an executable target needs to have
// available at run time, as computed by the external runfiles
// machinery.
type Runfiles struct {
	artifacts      nestedset.NestedSet[artifact.Artifact]
	extraMiddlemen nestedset.NestedSet[artifact.Artifact]
}

// NewRunfiles pairs a precomputed runfiles artifact set with the extra
// middlemen that stand in for parts of it in the action graph.
func NewRunfiles(artifacts, extraMiddlemen nestedset.NestedSet[artifact.Artifact]) *Runfiles {
	return &Runfiles{
		artifacts:      artifacts,
		extraMiddlemen: extraMiddlemen,
	}
}

// GetArtifacts returns the artifacts contained in the runfiles.
func (r *Runfiles) GetArtifacts() nestedset.NestedSet[artifact.Artifact] {
	return r.artifacts
}

// GetExtraMiddlemen returns the middlemen standing in for parts of the
// runfiles in the action graph.
func (r *Runfiles) GetExtraMiddlemen() nestedset.NestedSet[artifact.Artifact] {
	return r.extraMiddlemen
}

// GetAllArtifacts returns the artifacts and the extra middlemen as one
// set.
func (r *Runfiles) GetAllArtifacts() nestedset.NestedSet[artifact.Artifact] {
	return nestedset.Union(r.artifacts, r.extraMiddlemen)
}

// RunfilesSupport bundles the runfiles of an executable target with the
// middleman artifact that represents the assembled runfiles tree in the
// action graph.
type RunfilesSupport struct {
	runfiles  *Runfiles
	middleman artifact.Artifact
}

// NewRunfilesSupport creates the run time support data for an
// executable target.
func NewRunfilesSupport(runfiles *Runfiles, middleman artifact.Artifact) *RunfilesSupport {
	return &RunfilesSupport{
		runfiles:  runfiles,
		middleman: middleman,
	}
}

// GetRunfiles returns the runfiles of the executable target.
func (rs *RunfilesSupport) GetRunfiles() *Runfiles {
	return rs.runfiles
}

// GetRunfilesMiddleman returns the middleman artifact representing the
// assembled runfiles tree.
func (rs *RunfilesSupport) GetRunfilesMiddleman() artifact.Artifact {
	return rs.middleman
}

// RunfilesProvider is the provider entry through which a
// non-executable target contributes files to the runfiles of the
// executables depending on it.
type RunfilesProvider struct {
	defaultRunfiles *Runfiles
	dataRunfiles    *Runfiles
}

// NewRunfilesProvider pairs the runfiles a target contributes to
// ordinary dependents with those it contributes to "data"
// dependencies.
func NewRunfilesProvider(defaultRunfiles, dataRunfiles *Runfiles) *RunfilesProvider {
	return &RunfilesProvider{
		defaultRunfiles: defaultRunfiles,
		dataRunfiles:    dataRunfiles,
	}
}

// GetDefaultRunfiles returns the runfiles contributed to ordinary
// dependents.
func (rp *RunfilesProvider) GetDefaultRunfiles() *Runfiles {
	return rp.defaultRunfiles
}

// GetDataRunfiles returns the runfiles contributed to dependents that
// reference this target through a "data" attribute.
func (rp *RunfilesProvider) GetDataRunfiles() *Runfiles {
	return rp.dataRunfiles
}

// FileProvider is the provider entry carrying the artifacts built by
// default when the target is requested.
type FileProvider struct {
	filesToBuild nestedset.NestedSet[artifact.Artifact]
}

// GetFilesToBuild returns the target's default output set.
func (fp *FileProvider) GetFilesToBuild() nestedset.NestedSet[artifact.Artifact] {
	return fp.filesToBuild
}

// FilesToRunProvider is the provider entry carrying everything needed
// to run an executable target: the files to build, the runfiles
// support (absent for non-executable targets), and the executable
// itself.
type FilesToRunProvider struct {
	filesToRun      nestedset.NestedSet[artifact.Artifact]
	runfilesSupport *RunfilesSupport
	executable      *artifact.Artifact
}

// GetFilesToRun returns the artifacts that must be built before the
// target can be run.
func (fr *FilesToRunProvider) GetFilesToRun() nestedset.NestedSet[artifact.Artifact] {
	return fr.filesToRun
}

// GetRunfilesSupport returns the run time support data, or nil if the
// target is not executable.
func (fr *FilesToRunProvider) GetRunfilesSupport() *RunfilesSupport {
	return fr.runfilesSupport
}

// GetExecutable returns the artifact to invoke when the target is run.
func (fr *FilesToRunProvider) GetExecutable() (artifact.Artifact, bool) {
	if fr.executable == nil {
		return artifact.Artifact{}, false
	}
	return *fr.executable, true
}
