package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/role"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
)

func TestMain(m *testing.M) {
	logger = log.New(io.Discard, "", 0)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	os.Exit(m.Run())
}

func newTestCLI(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	conf := &core.Config{}
	svc := role.NewService(
		inmemdb.NewRoleRepository(db),
		activity.NewService(inmemdb.NewActivityRepository(db)),
		stdLogger{logger},
		conf,
	)
	var out bytes.Buffer
	return &commandLine{conf: conf, out: &out, roleSvc: svc}, &out
}

func TestCLI_usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: []string{"admin"}},
		{name: "unknown command", args: []string{"admin", "frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, out := newTestCLI(t)
			if err := cli.run(tt.args); err != errHelp {
				t.Errorf("run() error = %v, want errHelp", err)
			}
			if !strings.Contains(out.String(), "Usage:") {
				t.Errorf("usage not printed: %s", out.String())
			}
		})
	}
}

func TestCLI_addAdmin(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.run([]string{"admin", "addadmin", "-email", "Helper@Test.Test"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if want := "admin role granted to helper@test.test"; !strings.Contains(out.String(), want) {
		t.Errorf("out = %q, want %q", out.String(), want)
	}

	// duplicates are rejected
	if err := cli.run([]string{"admin", "addadmin", "-email", "helper@test.test"}); err == nil {
		t.Error("run() should fail for a duplicate email")
	}

	// invalid emails are rejected
	if err := cli.run([]string{"admin", "addadmin", "-email", "not-an-email"}); err == nil {
		t.Error("run() should fail for an invalid email")
	}
}

func TestCLI_removeAdmin(t *testing.T) {
	cli, out := newTestCLI(t)

	if err := cli.run([]string{"admin", "addadmin", "-email", "helper@test.test"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if err := cli.run([]string{"admin", "removeadmin", "-email", "helper@test.test"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if want := "admin role revoked from helper@test.test"; !strings.Contains(out.String(), want) {
		t.Errorf("out = %q, want %q", out.String(), want)
	}

	out.Reset()
	if err := cli.run([]string{"admin", "listadmins"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if out.String() != "" {
		t.Errorf("listadmins after removal = %q, want empty", out.String())
	}
}

func TestCLI_listAdmins(t *testing.T) {
	cli, out := newTestCLI(t)

	for _, email := range []string{"a@test.test", "b@test.test"} {
		if err := cli.run([]string{"admin", "addadmin", "-email", email}); err != nil {
			t.Fatalf("run() failed: %v", err)
		}
	}

	out.Reset()
	if err := cli.run([]string{"admin", "listadmins"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, "added by system") {
			t.Errorf("line = %q, want added-by attribution", line)
		}
	}
}
