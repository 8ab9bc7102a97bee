package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbatch/netbatch/pkg/dispatch"
	"github.com/netbatch/netbatch/pkg/inventory"
	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
)

// fakeSession answers every command from a scripted function.
type fakeSession struct {
	openErr  error
	runErr   error
	response func(cmd string) string
}

func (f *fakeSession) Open(_ context.Context) error { return f.openErr }

func (f *fakeSession) Run(_ context.Context, cmd string) (string, error) {
	if f.runErr != nil {
		return "", f.runErr
	}

	return f.response(cmd), nil
}

func (f *fakeSession) RunAll(_ context.Context, cmds []string) (map[string]string, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}

	out := make(map[string]string, len(cmds))
	for _, c := range cmds {
		out[c] = f.response(c)
	}

	return out, nil
}

func (f *fakeSession) RunConfig(_ context.Context, _ []string) (string, error) {
	if f.runErr != nil {
		return "", f.runErr
	}

	return f.response("config"), nil
}

func (*fakeSession) Close() error { return nil }

// fakeFactory scripts sessions per host and records the targets it saw.
type fakeFactory struct {
	sessions map[string]*fakeSession
	seen     map[string]dispatch.Target
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		sessions: make(map[string]*fakeSession),
		seen:     make(map[string]dispatch.Target),
	}
}

func (f *fakeFactory) NewSession(target dispatch.Target, _ time.Duration) dispatch.Session {
	f.seen[target.Host] = target

	if s, ok := f.sessions[target.Host]; ok {
		return s
	}

	return &fakeSession{response: func(cmd string) string { return "out: " + cmd }}
}

func newTestEngine(t *testing.T, factory dispatch.SessionFactory, inv *inventory.Inventory) *Engine {
	t.Helper()

	log := logger.NewTestLogger()

	return New(inv, dispatch.New(factory, log), log)
}

func loadTestInventory(t *testing.T) *inventory.Inventory {
	t.Helper()

	path := filepath.Join(t.TempDir(), "devices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  core:
    vendor: cisco_ios
    devices:
      - name: r1
        ip: 10.0.0.1
      - name: r2
        ip: 10.0.0.2
        vendor: juniper
        port: 2222
`), 0o600))

	inv, err := inventory.Load(path, logger.NewTestLogger())
	require.NoError(t, err)

	return inv
}

func TestExecuteBatchSingleTargetTwoCommands(t *testing.T) {
	factory := newFakeFactory()
	e := newTestEngine(t, factory, nil)

	res, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Targets:  []string{"10.0.0.1"},
		Commands: []string{"show version", "show ip int brief"},
		Username: "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, res.Status)
	require.Len(t, res.PerTarget, 1)

	outcome := res.PerTarget["10.0.0.1"]
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success)
	assert.Equal(t, "out: show version", outcome.Outputs["show version"])
	assert.Equal(t, "out: show ip int brief", outcome.Outputs["show ip int brief"])
}

func TestExecuteBatchPartialFailure(t *testing.T) {
	factory := newFakeFactory()
	factory.sessions["10.0.0.3"] = &fakeSession{
		openErr: errors.New("authentication rejected: 10.0.0.3"),
	}

	e := newTestEngine(t, factory, nil)

	res, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Targets:  []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5"},
		Commands: []string{"show clock"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPartial, res.Status)
	assert.Equal(t, 5, res.Summary.Total)
	assert.Equal(t, 4, res.Summary.Success)
	assert.Equal(t, 1, res.Summary.Failed)
	assert.False(t, res.PerTarget["10.0.0.3"].Success)
	assert.Contains(t, res.PerTarget["10.0.0.3"].Error, "authentication rejected")
}

func TestExecuteBatchConfigMode(t *testing.T) {
	factory := newFakeFactory()
	factory.sessions["r1"] = &fakeSession{response: func(string) string { return "config ok" }}

	e := newTestEngine(t, factory, nil)

	res, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Targets:    []string{"r1"},
		Commands:   []string{"hostname R1"},
		ConfigMode: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "config ok", res.PerTarget["r1"].ConfigOutput)
}

func TestExecuteBatchRejectsEmptyCommands(t *testing.T) {
	e := newTestEngine(t, newFakeFactory(), nil)

	_, err := e.ExecuteBatch(context.Background(), ExecRequest{Targets: []string{"10.0.0.1"}})
	require.ErrorIs(t, err, ErrNoCommands)
}

func TestExecuteBatchRejectsNoTargets(t *testing.T) {
	e := newTestEngine(t, newFakeFactory(), nil)

	_, err := e.ExecuteBatch(context.Background(), ExecRequest{Commands: []string{"show version"}})
	require.ErrorIs(t, err, ErrNoTargets)
}

func TestGroupResolution(t *testing.T) {
	factory := newFakeFactory()
	e := newTestEngine(t, factory, loadTestInventory(t))

	res, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Group:    "core",
		Commands: []string{"show version"},
	})
	require.NoError(t, err)

	require.Len(t, res.PerTarget, 2)
	assert.Contains(t, res.PerTarget, "10.0.0.1")
	assert.Contains(t, res.PerTarget, "10.0.0.2")

	// Group defaults and per-device overrides flow into the targets.
	assert.Equal(t, "cisco_ios", factory.seen["10.0.0.1"].Vendor)
	assert.Equal(t, "juniper", factory.seen["10.0.0.2"].Vendor)
	assert.Equal(t, 2222, factory.seen["10.0.0.2"].Port)
}

func TestUnknownGroupRejectedBeforeDispatch(t *testing.T) {
	factory := newFakeFactory()
	e := newTestEngine(t, factory, loadTestInventory(t))

	_, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Group:    "no-such-group",
		Commands: []string{"show version"},
	})
	require.ErrorIs(t, err, ErrGroupNotFound)
	assert.Empty(t, factory.seen)
}

func TestGroupWithoutInventoryRejected(t *testing.T) {
	e := newTestEngine(t, newFakeFactory(), nil)

	_, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Group:    "core",
		Commands: []string{"show version"},
	})
	require.ErrorIs(t, err, ErrNoInventory)
}

func TestExplicitTargetsPickUpInventoryOverrides(t *testing.T) {
	factory := newFakeFactory()
	e := newTestEngine(t, factory, loadTestInventory(t))

	_, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Targets:  []string{"10.0.0.2", "172.16.0.9"},
		Commands: []string{"show version"},
		Vendor:   "arista_eos",
	})
	require.NoError(t, err)

	// Known device: inventory vendor wins. Unknown device: batch default.
	assert.Equal(t, "juniper", factory.seen["10.0.0.2"].Vendor)
	assert.Equal(t, "arista_eos", factory.seen["172.16.0.9"].Vendor)
}

func TestDuplicateTargetsCollapse(t *testing.T) {
	factory := newFakeFactory()
	e := newTestEngine(t, factory, nil)

	res, err := e.ExecuteBatch(context.Background(), ExecRequest{
		Targets:  []string{"10.0.0.1", "10.0.0.1", "", "10.0.0.1"},
		Commands: []string{"show clock"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.Total)
	require.Len(t, res.PerTarget, 1)
}

func TestBackupFirstTime(t *testing.T) {
	factory := newFakeFactory()
	factory.sessions["10.0.0.1"] = &fakeSession{
		response: func(string) string { return "hostname R1\ninterface Gi0/1\n" },
	}

	e := newTestEngine(t, factory, nil)
	backupDir := t.TempDir()

	res, err := e.BackupConfigs(context.Background(), BackupRequest{
		Targets:   []string{"10.0.0.1"},
		BackupDir: backupDir,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Summary.Changed)

	outcome := res.PerTarget["10.0.0.1"]
	require.NotNil(t, outcome.Backup)
	assert.True(t, outcome.Backup.Changed)
	assert.Nil(t, outcome.Backup.Diff)
	assert.FileExists(t, outcome.Backup.Path)
	assert.FileExists(t, filepath.Join(backupDir, "10_0_0_1", "config_latest.txt"))
}

func TestBackupTwiceIdenticalIsUnchanged(t *testing.T) {
	factory := newFakeFactory()
	factory.sessions["10.0.0.1"] = &fakeSession{
		response: func(string) string { return "hostname R1\n" },
	}

	e := newTestEngine(t, factory, nil)
	backupDir := t.TempDir()

	req := BackupRequest{Targets: []string{"10.0.0.1"}, BackupDir: backupDir}

	_, err := e.BackupConfigs(context.Background(), req)
	require.NoError(t, err)

	res, err := e.BackupConfigs(context.Background(), req)
	require.NoError(t, err)

	outcome := res.PerTarget["10.0.0.1"]
	require.NotNil(t, outcome.Backup)
	assert.False(t, outcome.Backup.Changed)
	assert.Nil(t, outcome.Backup.Diff)
	assert.Equal(t, 0, res.Summary.Changed)
}

func TestBackupUsesVendorShowCommand(t *testing.T) {
	var gotCmd string

	factory := newFakeFactory()
	factory.sessions["10.0.0.2"] = &fakeSession{
		response: func(cmd string) string {
			gotCmd = cmd
			return "system { host-name R2; }\n"
		},
	}

	e := newTestEngine(t, factory, loadTestInventory(t))

	_, err := e.BackupConfigs(context.Background(), BackupRequest{
		Targets:   []string{"10.0.0.2"},
		BackupDir: t.TempDir(),
	})
	require.NoError(t, err)

	// r2 is juniper in the inventory.
	assert.Equal(t, "show configuration", gotCmd)
}

func TestBackupDisablesPagingBeforeRetrieval(t *testing.T) {
	var cmds []string

	factory := newFakeFactory()
	factory.sessions["10.0.0.1"] = &fakeSession{
		response: func(cmd string) string {
			cmds = append(cmds, cmd)
			return "hostname R1\n"
		},
	}

	e := newTestEngine(t, factory, nil)

	_, err := e.BackupConfigs(context.Background(), BackupRequest{
		Targets:   []string{"10.0.0.1"},
		BackupDir: t.TempDir(),
	})
	require.NoError(t, err)

	// Default vendor is cisco_ios.
	assert.Equal(t, []string{"terminal length 0", "show running-config"}, cmds)
}

func TestBackupEmptyConfigIsPerTargetFailure(t *testing.T) {
	factory := newFakeFactory()
	factory.sessions["10.0.0.1"] = &fakeSession{response: func(string) string { return "" }}
	factory.sessions["10.0.0.2"] = &fakeSession{response: func(string) string { return "hostname R2\n" }}

	e := newTestEngine(t, factory, nil)

	res, err := e.BackupConfigs(context.Background(), BackupRequest{
		Targets:   []string{"10.0.0.1", "10.0.0.2"},
		BackupDir: t.TempDir(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPartial, res.Status)
	assert.False(t, res.PerTarget["10.0.0.1"].Success)
	assert.Contains(t, res.PerTarget["10.0.0.1"].Error, "empty")
	assert.True(t, res.PerTarget["10.0.0.2"].Success)
}
