package proxy_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/handlers"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/specialistvlad/stepproxy/internal/proxy"
	"github.com/specialistvlad/stepproxy/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type echoInput struct {
	Text string `hcl:"text"`
}

func loadWorkspace(t *testing.T, src string) (*registry.Registry, *bytes.Buffer, error) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(src), 0o644))

	var out bytes.Buffer
	h := handlers.New()
	h.RegisterHandler("echo", &handlers.RegisteredHandler{
		Input: func() any { return new(echoInput) },
		Fn: func(_ context.Context, b *build.Build, in any) (bool, error) {
			out.WriteString(in.(*echoInput).Text + "\n")
			return true, nil
		},
	})
	reg := registry.New(h)
	proxy.RegisterHandler(h, proxy.NewResolver(reg))

	return reg, &out, reg.LoadWorkspace(context.Background(), dir)
}

func runProject(t *testing.T, reg *registry.Registry, name string) bool {
	t.Helper()
	item, ok := reg.Item(name)
	require.True(t, ok)
	steps := item.(model.Buildable).Builders()

	b := build.New(name, 1, nil)
	leave, ok := b.EnterProject(name)
	require.True(t, ok)
	defer leave()

	ctx := context.Background()
	if !proxy.PrebuildAll(ctx, b, steps) {
		return false
	}
	ok, err := proxy.PerformAll(ctx, b, steps)
	require.NoError(t, err)
	return ok
}

func TestRegisterHandler_ReplaysTargetWithParameters(t *testing.T) {
	reg, out, err := loadWorkspace(t, `
project "library" {
  parameters {
    parameter "BRANCH" {
      type    = string
      default = "main"
    }
    parameter "RETRIES" {
      type = number
    }
  }
  step "echo" "checkout" {
    text = "checkout ${param.BRANCH}"
  }
  step "echo" "retries" {
    text = "retries ${param.RETRIES}"
  }
}

project "app" {
  step "echo" "before" {
    text = "before"
  }
  step "proxy" "library" {
    project = "library"
    parameter "RETRIES" {
      value = "3"
    }
  }
}
`)
	require.NoError(t, err)

	item, _ := reg.Item("app")
	steps := item.(model.Buildable).Builders()
	require.Len(t, steps, 2)
	p, ok := steps[1].(*proxy.Proxy)
	require.True(t, ok)
	assert.Equal(t, "library", p.ProjectName())
	assert.Equal(t, "proxy library", p.String())

	require.True(t, runProject(t, reg, "app"))
	assert.Equal(t, "before\ncheckout main\nretries 3\n", out.String())
}

func TestRegisterHandler_UnknownParameterAbortsLoading(t *testing.T) {
	_, _, err := loadWorkspace(t, `
project "library" {
  parameters {
    parameter "BRANCH" {
      type = string
    }
  }
}

project "app" {
  step "proxy" "library" {
    project = "library"
    parameter "BRNCH" {
      value = "dev"
    }
  }
}
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, proxy.ErrNoSuchParameterDefinition)
	assert.Contains(t, err.Error(), "no such parameter definition: BRNCH")
}

func TestRegisterHandler_MissingTargetLoadsAndSucceedsVacuously(t *testing.T) {
	reg, out, err := loadWorkspace(t, `
project "app" {
  step "proxy" "gone" {
    project = "does-not-exist"
  }
  step "echo" "after" {
    text = "after"
  }
}
`)
	require.NoError(t, err)
	assert.True(t, runProject(t, reg, "app"))
	assert.Equal(t, "after\n", out.String())
}

func TestRegisterHandler_MissingProjectAttribute(t *testing.T) {
	_, _, err := loadWorkspace(t, `
project "app" {
  step "proxy" "broken" {}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project 'app'")
}

func TestRegisterHandler_ProxyToProxyAndFolder(t *testing.T) {
	reg, out, err := loadWorkspace(t, `
folder "team" {
  project "base" {
    parameters {
      parameter "NAME" {
        type = string
      }
    }
    step "echo" "hello" {
      text = "hello ${param.NAME}"
    }
  }
}

project "middle" {
  parameters {
    parameter "WHO" {
      type    = string
      default = "world"
    }
  }
  step "proxy" "base" {
    project = "team/base"
    parameter "NAME" {
      value = param.WHO
    }
  }
}

project "top" {
  step "proxy" "middle" {
    project = "middle"
  }
}
`)
	require.NoError(t, err)
	require.True(t, runProject(t, reg, "top"))
	assert.Equal(t, "hello world\n", out.String())

	item, _ := reg.ItemByFullName("team/base")
	defs, ok := item.(model.Parameterized).ParameterDefinitions()
	require.True(t, ok)
	assert.Equal(t, cty.String, defs[0].Type)
}
