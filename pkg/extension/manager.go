package extension

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yomikata/yomikata/pkg/compatibility"
	"github.com/yomikata/yomikata/pkg/source"
)

// Manager drives the install/update/uninstall lifecycle against a remote
// extension repository. It composes the index client, the compatibility gate
// and the registry; it never mutates the registry without the gate passing
// first.
type Manager struct {
	registry *Registry
	index    *IndexClient
	gate     compatibility.Gate
	runtime  Runtime
	log      *logrus.Logger

	// mu serializes lifecycle transitions. A single exclusive section over
	// all ids keeps the state machine simple; catalog dispatch never takes it,
	// so reads proceed concurrently with a slow install.
	mu sync.Mutex
}

// NewManager creates a lifecycle manager.
func NewManager(registry *Registry, index *IndexClient, gate compatibility.Gate, runtime Runtime, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		registry: registry,
		index:    index,
		gate:     gate,
		runtime:  runtime,
		log:      log,
	}
}

// Install fetches the repository index, checks the descriptor for id against
// the compatibility gate, loads the package and registers it. Any failure
// leaves the id exactly as it was: absent.
func (m *Manager) Install(ctx context.Context, repoURL string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry.Exists(id) {
		return fmt.Errorf("%w: id %d", ErrAlreadyInstalled, id)
	}

	index, err := m.index.FetchIndex(ctx, repoURL)
	if err != nil {
		return err
	}
	desc, err := FindDescriptor(index, id)
	if err != nil {
		return err
	}

	if !m.gate.Compatible(desc.ABITag, desc.ContractVersion) {
		return fmt.Errorf("%w: package %s/%s, host %s/%s", ErrIncompatibleVersion,
			desc.ABITag, desc.ContractVersion, m.gate.ABITag, m.gate.ContractVersion)
	}

	return m.loadAndRegister(ctx, repoURL, desc)
}

// Update replaces the installed package with a strictly newer one from the
// repository.
//
// The transition is NOT atomic: the old entry is unregistered before the new
// package is loaded, and if that second half fails the id ends up absent. No
// rollback is attempted.
func (m *Manager) Update(ctx context.Context, repoURL string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	installed, err := m.registry.GetSourceInfo(id)
	if err != nil {
		return err
	}

	index, err := m.index.FetchIndex(ctx, repoURL)
	if err != nil {
		return err
	}
	desc, err := FindDescriptor(index, id)
	if err != nil {
		return err
	}

	newer, err := compatibility.HasNewer(installed.Version, desc.Version)
	if err != nil {
		return err
	}
	if !newer {
		return fmt.Errorf("%w: installed %s, remote %s", ErrNoNewVersion, installed.Version, desc.Version)
	}

	if !m.gate.Compatible(desc.ABITag, desc.ContractVersion) {
		return fmt.Errorf("%w: package %s/%s, host %s/%s", ErrIncompatibleVersion,
			desc.ABITag, desc.ContractVersion, m.gate.ABITag, m.gate.ContractVersion)
	}

	if err := m.registry.Unregister(id); err != nil {
		return err
	}

	if err := m.loadAndRegister(ctx, repoURL, desc); err != nil {
		m.log.WithError(err).Warnf("Update of source %d failed after unregister; source is now absent", id)
		return err
	}

	m.log.Infof("Updated source %s (%d): %s -> %s", desc.Name, id, installed.Version, desc.Version)
	return nil
}

// Uninstall removes the installed extension.
func (m *Manager) Uninstall(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.registry.Unregister(id); err != nil {
		return err
	}

	m.log.Infof("Uninstalled source %d", id)
	return nil
}

// Available returns the repository entries that are not installed. An
// available-but-not-installed entry has no update concept, so HasUpdate is
// false on every record.
func (m *Manager) Available(ctx context.Context, repoURL string) ([]source.Source, error) {
	index, err := m.index.FetchIndex(ctx, repoURL)
	if err != nil {
		return nil, err
	}

	sources := make([]source.Source, 0, len(index))
	for _, desc := range index {
		if m.registry.Exists(desc.ID) {
			continue
		}
		sources = append(sources, desc.Source())
	}
	return sources, nil
}

// CheckUpdates returns the installed sources with HasUpdate computed live
// against the repository index. A source missing from the index, or one whose
// remote version does not parse, reports no update; Update still surfaces the
// parse error when the admin acts on it.
func (m *Manager) CheckUpdates(ctx context.Context, repoURL string) ([]source.Source, error) {
	index, err := m.index.FetchIndex(ctx, repoURL)
	if err != nil {
		return nil, err
	}

	installed := m.registry.List()
	for i := range installed {
		desc, err := FindDescriptor(index, installed[i].ID)
		if err != nil {
			continue
		}
		newer, err := compatibility.HasNewer(installed[i].Version, desc.Version)
		if err != nil {
			m.log.WithError(err).Warnf("Skipping update check for source %d", installed[i].ID)
			continue
		}
		installed[i].HasUpdate = newer
	}
	return installed, nil
}

// loadAndRegister materializes a handle and inserts the entry. On a register
// race loss the fresh handle is closed so no two live handles exist for one
// id.
func (m *Manager) loadAndRegister(ctx context.Context, repoURL string, desc source.Descriptor) error {
	handle, err := m.runtime.Load(ctx, repoURL, desc.Name)
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrExecution, desc.Name, err)
	}

	if err := m.registry.Register(desc.Source(), handle); err != nil {
		if cerr := handle.Close(); cerr != nil {
			m.log.WithError(cerr).Warnf("Closing unregistered handle for source %d failed", desc.ID)
		}
		return err
	}

	m.log.Infof("Installed source %s (%d) v%s", desc.Name, desc.ID, desc.Version)
	return nil
}
