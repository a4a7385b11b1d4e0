package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
	"github.com/signalnine/asmqc/internal/toolexec"
)

// Executor runs tool commands inside a container image. The current working
// directory, and the parent directory of every absolute path argument, are
// bind-mounted at their host paths so commands see the same filesystem
// layout they would on the host.
type Executor struct {
	Image string
	// Env is added to every command's environment.
	Env map[string]string
	// Mounts are extra host directories to bind at their own paths.
	Mounts []string
	UserID string
}

type Mount struct {
	Source string
	Target string
}

func (e *Executor) Run(ctx context.Context, c toolexec.Command) toolexec.Outcome {
	stdout, code, err := e.run(ctx, c)
	return toolexec.Outcome{Stdout: stdout, ExitCode: code, Err: err}
}

func (e *Executor) run(ctx context.Context, c toolexec.Command) ([]byte, int, error) {
	if c.Stdin != nil {
		return nil, 1, errors.New("docker executor does not support stdin")
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, 1, fmt.Errorf("getting working directory: %w", err)
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, 1, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	env := make([]string, 0, len(e.Env)+len(c.Env))
	for k, v := range e.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, c.EnvList()...)

	var mounts []mount.Mount
	for _, m := range Mounts(wd, c.Args, e.Mounts) {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeBind,
			Source: m.Source,
			Target: m.Target,
		})
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: mounts,
		Init:   &initTrue,
	}
	containerCfg := &container.Config{
		Image:      e.Image,
		Cmd:        append([]string{c.Name}, c.Args...),
		Env:        env,
		WorkingDir: wd,
		Labels:     map[string]string{"asmqc": "true"},
	}
	if e.UserID != "" {
		containerCfg.User = e.UserID
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, 1, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, 1, fmt.Errorf("starting container: %w", err)
	}

	waitResult := cli.ContainerWait(ctx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	var exitCode int
	for done := false; !done; {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				return nil, toolexec.ExitKilled, fmt.Errorf("waiting for container: %w", err)
			}
		case status := <-waitResult.Result:
			exitCode = int(status.StatusCode)
			done = true
		}
	}

	logReader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true})
	if err != nil {
		return nil, exitCode, fmt.Errorf("reading container logs: %w", err)
	}
	defer logReader.Close()
	var stdout bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &bytes.Buffer{}, logReader); err != nil {
		return stdout.Bytes(), exitCode, fmt.Errorf("demultiplexing container logs: %w", err)
	}
	if exitCode != 0 {
		return stdout.Bytes(), exitCode, fmt.Errorf("%s exited with status %d", c.Name, exitCode)
	}
	return stdout.Bytes(), 0, nil
}

// Mounts lists the bind mounts needed to run args from wd: wd itself, the
// parent of every absolute path argument that exists on the host, and
// extra. Nested directories are folded into their ancestors.
func Mounts(wd string, args []string, extra []string) []Mount {
	dirs := []string{wd}
	for _, a := range args {
		if !filepath.IsAbs(a) {
			continue
		}
		info, err := os.Stat(a)
		if err != nil {
			continue
		}
		if info.IsDir() {
			dirs = append(dirs, filepath.Clean(a))
		} else {
			dirs = append(dirs, filepath.Dir(a))
		}
	}
	for _, d := range extra {
		if abs, err := filepath.Abs(d); err == nil {
			dirs = append(dirs, abs)
		}
	}
	sort.Strings(dirs)

	var mounts []Mount
	for _, d := range dirs {
		if n := len(mounts); n > 0 && within(d, mounts[n-1].Source) {
			continue
		}
		mounts = append(mounts, Mount{Source: d, Target: d})
	}
	return mounts
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(dir, string(filepath.Separator))+string(filepath.Separator))
}
