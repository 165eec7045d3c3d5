// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package luaplugin_test

import (
	"context"
	"testing"

	"github.com/holomush/hotplug/luaplugin"
)

func TestStateFactory_NewState_LoadsSafeLibraries(t *testing.T) {
	factory := luaplugin.NewStateFactory()
	L, err := factory.NewState(context.Background())
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer L.Close()

	safeLibs := []string{"table", "string", "math"}
	for _, lib := range safeLibs {
		if L.GetGlobal(lib).Type().String() == "nil" {
			t.Errorf("library %q not loaded", lib)
		}
	}
}

func TestStateFactory_NewState_BlocksUnsafeLibraries(t *testing.T) {
	factory := luaplugin.NewStateFactory()
	L, err := factory.NewState(context.Background())
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer L.Close()

	unsafeLibs := []string{"os", "io", "debug", "package"}
	for _, lib := range unsafeLibs {
		if L.GetGlobal(lib).Type().String() != "nil" {
			t.Errorf("unsafe library %q should not be loaded", lib)
		}
	}
}

func TestStateFactory_NewState_BlocksFilesystemFunctions(t *testing.T) {
	factory := luaplugin.NewStateFactory()
	L, err := factory.NewState(context.Background())
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer L.Close()

	unsafeFuncs := []string{"dofile", "loadfile", "loadstring", "load"}
	for _, fn := range unsafeFuncs {
		if L.GetGlobal(fn).Type().String() != "nil" {
			t.Errorf("unsafe function %q should be blocked for sandboxing", fn)
		}
	}
}

func TestStateFactory_NewState_CanExecuteLua(t *testing.T) {
	factory := luaplugin.NewStateFactory()
	L, err := factory.NewState(context.Background())
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	defer L.Close()

	if err := L.DoString(`result = string.upper("hello")`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := L.GetGlobal("result").String(); got != "HELLO" {
		t.Errorf("result = %v, want HELLO", got)
	}
}

func TestStateFactory_NewState_MultipleStatesAreIndependent(t *testing.T) {
	factory := luaplugin.NewStateFactory()

	L1, err := factory.NewState(context.Background())
	if err != nil {
		t.Fatalf("NewState() L1 error = %v", err)
	}
	defer L1.Close()

	L2, err := factory.NewState(context.Background())
	if err != nil {
		t.Fatalf("NewState() L2 error = %v", err)
	}
	defer L2.Close()

	if err := L1.DoString(`foo = "bar"`); err != nil {
		t.Fatalf("L1.DoString() error = %v", err)
	}
	if L2.GetGlobal("foo").Type().String() != "nil" {
		t.Error("states should be independent - L2 should not have L1's variable")
	}
}
