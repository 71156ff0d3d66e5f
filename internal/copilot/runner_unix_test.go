//go:build !windows

package copilot

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repodoctor/internal/doctor"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestExecRunner(t *testing.T) {
	sh := requireShell(t)

	tests := []struct {
		name       string
		binary     string
		args       []string
		wantStdout string
		wantStderr string
		wantCode   int
		wantErr    error
	}{
		{
			name:       "success",
			binary:     sh,
			args:       []string{"-c", "echo ok"},
			wantStdout: "ok\n",
		},
		{
			name:       "non-zero exit",
			binary:     sh,
			args:       []string{"-c", "echo x; echo oops >&2; exit 3"},
			wantStdout: "x\n",
			wantStderr: "oops\n",
			wantCode:   3,
		},
		{
			name:     "missing binary",
			binary:   filepath.Join(t.TempDir(), "no-such-backend"),
			wantCode: -1,
			wantErr:  fs.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code, err := ExecRunner{}.Run(context.Background(), t.TempDir(), tt.binary, tt.args...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStdout, string(stdout))
			assert.Equal(t, tt.wantStderr, string(stderr))
		})
	}
}

func TestExecRunnerKillsProcessGroupOnDeadline(t *testing.T) {
	sh := requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// The shell forks sleep, which inherits the output pipes.
	start := time.Now()
	stdout, _, code, _ := ExecRunner{}.Run(ctx, "", sh, "-c", "sleep 5; echo done")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 1500*time.Millisecond)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	assert.NotEqual(t, 0, code)
	assert.NotContains(t, string(stdout), "done")
}

func TestInvokeTimeoutWithRealBackend(t *testing.T) {
	requireShell(t)

	script := filepath.Join(t.TempDir(), "copilot")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\necho '{}'\n"), 0755))

	iv, err := New(Options{
		Timeout:  300 * time.Millisecond,
		LookPath: func(string) (string, error) { return script, nil },
	})
	require.NoError(t, err)

	start := time.Now()
	_, retried, err := iv.InvokeWithRetry(context.Background(), "p", t.TempDir())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, doctor.IsKind(err, doctor.KindCopilotTimeout))
	assert.False(t, retried)
	assert.Less(t, elapsed, 2*time.Second)
}
