package taskconfig

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// genericName is the profile file key for the fallback profile.
const genericName = "generic"

// Registry maps task names to profiles. Unknown and absent names resolve to
// the generic profile.
type Registry struct {
	generic  Profile
	profiles map[models.TaskName]Profile
}

// profileFile is the on-disk layout accepted by LoadFile.
type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultRegistry returns a registry holding the built-in profiles.
func DefaultRegistry() *Registry {
	r := &Registry{
		generic:  genericProfile,
		profiles: make(map[models.TaskName]Profile, len(builtinProfiles)),
	}
	for _, p := range builtinProfiles {
		r.profiles[p.Name] = p
	}
	return r
}

// Lookup returns the profile for name. The boolean reports whether name had
// its own profile; when false the generic profile is returned.
func (r *Registry) Lookup(name models.TaskName) (Profile, bool) {
	if p, ok := r.profiles[name]; ok && name.IsSet() {
		return p, true
	}
	return r.generic, false
}

// Generic returns the fallback profile.
func (r *Registry) Generic() Profile {
	return r.generic
}

// Register adds or replaces a profile. A profile named "generic" or with an
// empty name replaces the fallback profile.
func (r *Registry) Register(p Profile) {
	if p.Name == genericName || !p.Name.IsSet() {
		p.Name = models.TaskNone
		r.generic = p
		return
	}
	r.profiles[p.Name] = p
}

// Names returns the task names with their own profile, sorted.
func (r *Registry) Names() []models.TaskName {
	names := make([]models.TaskName, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// LoadFile merges the profiles in a YAML file over the registry.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profiles %s: %w", path, err)
	}

	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse profiles %s: %w", path, err)
	}

	for i, p := range file.Profiles {
		if p.SystemPrompt == "" {
			return fmt.Errorf("parse profiles %s: profile %d (%q) has no system_prompt", path, i, p.Name)
		}
		r.Register(p)
	}
	return nil
}
