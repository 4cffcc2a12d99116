// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/matt-FFFFFF/rashell/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sys/unix"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctxlog.New(ctx, ctxlog.DefaultLogger)
}

func TestStartEchoPipe(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "echo", Args: []string{"hello"}}

	p, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Pipe()),
		WithStderr(Discard()),
	)
	require.NoError(t, err)
	require.NotNil(t, p)

	st, err := cmd.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateExited, st.State)
	assert.Equal(t, 0, st.Code)

	out, err := io.ReadAll(cmd.Stdout())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	require.NoError(t, cmd.Close())
}

func TestStartTwiceFails(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "/bin/sh", Args: []string{"-c", "sleep 0.2"}}

	p, err := cmd.Start(ctx, WithStdin(Discard()), WithStdout(Discard()), WithStderr(Discard()))
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = cmd.Start(ctx)
	require.ErrorIs(t, err, ErrAlreadyStarted)

	// The first process is unaffected by the failed second start.
	st, err := cmd.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateExited, st.State)
	assert.Equal(t, 0, st.Code)

	require.NoError(t, cmd.Close())
}

func TestStartNoProgram(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{}

	_, err := cmd.Start(ctx)
	require.ErrorIs(t, err, ErrNoProgram)
}

func TestStartProgramNotFound(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "/not/a/real/program"}

	_, err := cmd.Start(ctx, WithStdin(Discard()), WithStdout(Discard()), WithStderr(Discard()))
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.Equal(t, StatePending, cmd.Status().State)
}

func TestPendingDescriptor(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "true"}

	assert.Equal(t, StatePending, cmd.Status().State)
	assert.NoError(t, cmd.Signal(syscall.SIGTERM), "signaling a pending descriptor is a no-op")
	assert.NoError(t, cmd.SignalName("TERM"))
	assert.NoError(t, cmd.Close(), "closing a pending descriptor is a no-op")
	assert.Nil(t, cmd.Stdin())
	assert.Nil(t, cmd.Stdout())
	assert.Nil(t, cmd.Stderr())

	st, err := cmd.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePending, st.State, "waiting on a pending descriptor returns immediately")
}

func TestSignalNameUnresolved(t *testing.T) {
	cmd := &Command{Program: "true"}

	err := cmd.SignalName("NOSUCHSIG")
	require.Error(t, err, "an unresolvable name is an error even on a pending descriptor")
}

func TestMissingInputSilentDecline(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "cat"}

	p, err := cmd.Start(ctx,
		WithStdin(Path(filepath.Join(t.TempDir(), "absent"))),
		WithStdout(Discard()),
		WithStderr(Discard()),
	)
	require.NoError(t, err, "abort-silently must not raise")
	assert.Nil(t, p)
	assert.Equal(t, StatePending, cmd.Status().State, "a declined start leaves the descriptor pending")
}

func TestMissingInputAbortWithError(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "cat"}

	_, err := cmd.Start(ctx,
		WithStdin(Path(filepath.Join(t.TempDir(), "absent")).Missing(MissingAbortWithError)),
		WithStdout(Discard()),
		WithStderr(Discard()),
	)
	require.ErrorIs(t, err, ErrMissingInputFile)
	assert.Equal(t, StatePending, cmd.Status().State)
}

func TestSilentDeclineLeavesOtherTargetsUntouched(t *testing.T) {
	ctx := testContext(t)

	dir := t.TempDir()
	existing := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(existing, []byte("precious"), 0o644))

	cmd := &Command{Program: "cat"}

	p, err := cmd.Start(ctx,
		WithStdin(Path(filepath.Join(dir, "absent"))),
		WithStdout(Path(existing).Existing(ExistingTruncate)),
		WithStderr(Discard()),
	)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, StatePending, cmd.Status().State)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(content),
		"a declined start must not truncate another stream's target")
}

func TestDeclineDoesNotCreateOtherTargets(t *testing.T) {
	ctx := testContext(t)

	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh")

	cmd := &Command{Program: "cat"}

	p, err := cmd.Start(ctx,
		WithStdin(Path(filepath.Join(dir, "absent")).Missing(MissingCreateEmpty)),
		WithStdout(Path(fresh)),
		WithStderr(Path(filepath.Join(dir, "taken"))),
	)
	require.NoError(t, err)
	require.NotNil(t, p, "nothing declines here, the start must proceed")
	_, err = cmd.Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, cmd.Close())

	// Now make stderr decline and verify the other two stay untouched.
	require.NoError(t, os.Remove(filepath.Join(dir, "absent")))
	require.NoError(t, os.Remove(fresh))

	declining := &Command{Program: "cat"}

	p, err = declining.Start(ctx,
		WithStdin(Path(filepath.Join(dir, "absent")).Missing(MissingCreateEmpty)),
		WithStdout(Path(fresh)),
		WithStderr(Path(filepath.Join(dir, "taken"))),
	)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = os.Stat(filepath.Join(dir, "absent"))
	assert.True(t, os.IsNotExist(err), "a declined start must not create the input file")
	_, err = os.Stat(fresh)
	assert.True(t, os.IsNotExist(err), "a declined start must not create the output file")
}

func TestPolicyErrorLeavesOtherTargetsUntouched(t *testing.T) {
	ctx := testContext(t)

	dir := t.TempDir()
	fresh := filepath.Join(dir, "fresh")
	taken := filepath.Join(dir, "taken")
	require.NoError(t, os.WriteFile(taken, []byte("keep me"), 0o644))

	cmd := &Command{Program: "cat"}

	_, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Path(fresh)),
		WithStderr(Path(taken).Existing(ExistingAbortWithError)),
	)
	require.ErrorIs(t, err, ErrOutputFileExists)

	_, err = os.Stat(fresh)
	assert.True(t, os.IsNotExist(err),
		"a policy error on one stream must not leave another stream's file behind")

	content, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(content))
}

func TestExistingOutputAbortWithError(t *testing.T) {
	ctx := testContext(t)

	existing := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0o644))

	cmd := &Command{Program: "echo", Args: []string{"overwrite"}}

	_, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Path(existing).Existing(ExistingAbortWithError)),
		WithStderr(Discard()),
	)
	require.ErrorIs(t, err, ErrOutputFileExists)
	assert.Equal(t, StatePending, cmd.Status().State, "no process may be spawned")

	content, readErr := os.ReadFile(existing)
	require.NoError(t, readErr)
	assert.Equal(t, "keep me", string(content))
}

func TestExistingOutputSilentDecline(t *testing.T) {
	ctx := testContext(t)

	existing := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(existing, nil, 0o644))

	cmd := &Command{Program: "echo", Args: []string{"x"}}

	p, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Path(existing)),
		WithStderr(Discard()),
	)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, StatePending, cmd.Status().State)
}

func TestOutputToFileAppend(t *testing.T) {
	ctx := testContext(t)

	name := filepath.Join(t.TempDir(), "log")
	require.NoError(t, os.WriteFile(name, []byte("first\n"), 0o644))

	cmd := &Command{Program: "echo", Args: []string{"second"}}

	p, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Path(name).Existing(ExistingAppend)),
		WithStderr(Discard()),
	)
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = cmd.Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, cmd.Close())

	content, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}

func TestMergeStderrWithStdout(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "/bin/sh", Args: []string{"-c", "echo out; echo err 1>&2"}}

	p, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Pipe()),
		WithStderr(MergeWithStdout()),
	)
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = cmd.Wait(ctx)
	require.NoError(t, err)

	out, err := io.ReadAll(cmd.Stdout())
	require.NoError(t, err)
	assert.Contains(t, string(out), "out")
	assert.Contains(t, string(out), "err")
	assert.Nil(t, cmd.Stderr(), "merged stderr has no stream of its own")

	require.NoError(t, cmd.Close())
}

func TestSignalTermination(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "sleep", Args: []string{"30"}}

	p, err := cmd.Start(ctx, WithStdin(Discard()), WithStdout(Discard()), WithStderr(Discard()))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StateRunning, cmd.Status().State)

	require.NoError(t, cmd.SignalName("TERM"))

	st, err := cmd.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSignaled, st.State)
	assert.Equal(t, syscall.SIGTERM, st.Signal)

	// Terminal status is latched and stable.
	assert.Equal(t, st, cmd.Status())
	require.NoError(t, cmd.Close())
}

func TestStopAndContinue(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "sleep", Args: []string{"30"}}

	p, err := cmd.Start(ctx, WithStdin(Discard()), WithStdout(Discard()), WithStderr(Discard()))
	require.NoError(t, err)
	require.NotNil(t, p)

	require.NoError(t, cmd.Signal(unix.SIGSTOP))

	st, err := cmd.WaitStopped(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, st.State)

	require.NoError(t, cmd.SignalName("CONT"))

	require.Eventually(t, func() bool {
		return cmd.Status().State == StateRunning
	}, 5*time.Second, 10*time.Millisecond, "expected the process to resume")

	require.NoError(t, cmd.Signal(unix.SIGKILL))

	st, err = cmd.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateSignaled, st.State)
	assert.Equal(t, syscall.SIGKILL, st.Signal)

	require.NoError(t, cmd.Close())
}

func TestNotifyCallback(t *testing.T) {
	ctx := testContext(t)

	var (
		mu   sync.Mutex
		seen []Status
	)

	cmd := &Command{Program: "/bin/sh", Args: []string{"-c", "exit 3"}}

	p, err := cmd.Start(ctx,
		WithStdin(Discard()),
		WithStdout(Discard()),
		WithStderr(Discard()),
		WithNotify(func(st Status) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, st)
		}),
	)
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = cmd.Wait(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(seen) > 0 && seen[len(seen)-1].Terminal()
	}, 5*time.Second, 10*time.Millisecond, "expected a terminal transition notification")

	mu.Lock()
	last := seen[len(seen)-1]
	mu.Unlock()

	assert.Equal(t, StateExited, last.State)
	assert.Equal(t, 3, last.Code)
	require.NoError(t, cmd.Close())
}

func TestStdinPipeDrivesChild(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "cat"}

	p, err := cmd.Start(ctx,
		WithStdin(Pipe()),
		WithStdout(Pipe()),
		WithStderr(Discard()),
	)
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = cmd.Stdin().WriteString("roundtrip\n")
	require.NoError(t, err)

	scanner := bufio.NewScanner(cmd.Stdout())
	require.True(t, scanner.Scan())
	assert.Equal(t, "roundtrip", scanner.Text())

	require.NoError(t, cmd.Stdin().Close())

	st, err := cmd.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateExited, st.State)
	assert.Equal(t, 0, st.Code)

	require.NoError(t, cmd.Close())
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "sleep", Args: []string{"1"}}

	p, err := cmd.Start(ctx, WithStdin(Pipe()), WithStdout(Pipe()), WithStderr(Pipe()))
	require.NoError(t, err)
	require.NotNil(t, p)

	// Closing the streams of a running process does not terminate it.
	require.NoError(t, cmd.Close())
	require.NoError(t, cmd.Close())
	assert.NotEqual(t, StateSignaled, cmd.Status().State)

	_, err = cmd.Wait(ctx)
	require.NoError(t, err)
}

func TestWaitHonorsContext(t *testing.T) {
	ctx := testContext(t)

	cmd := &Command{Program: "sleep", Args: []string{"30"}}

	p, err := cmd.Start(ctx, WithStdin(Discard()), WithStdout(Discard()), WithStderr(Discard()))
	require.NoError(t, err)
	require.NotNil(t, p)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	st, err := cmd.Wait(short)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateRunning, st.State)

	require.NoError(t, cmd.Signal(unix.SIGKILL))

	_, err = cmd.Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, cmd.Close())
}

func TestEnvAndDirFlowIntoChild(t *testing.T) {
	ctx := testContext(t)

	dir := t.TempDir()
	cmd := &Command{
		Program: "/bin/sh",
		Args:    []string{"-c", "echo $RASHELL_CHILD_VAR; pwd"},
		Dir:     dir,
		Env:     []string{EnvAppend, "RASHELL_CHILD_VAR=present"},
	}

	p, err := cmd.Start(ctx, WithStdin(Discard()), WithStdout(Pipe()), WithStderr(Discard()))
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = cmd.Wait(ctx)
	require.NoError(t, err)

	out, err := io.ReadAll(cmd.Stdout())
	require.NoError(t, err)
	assert.Contains(t, string(out), "present")
	assert.Contains(t, string(out), filepath.Base(dir))

	require.NoError(t, cmd.Close())
}
