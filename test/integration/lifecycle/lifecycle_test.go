// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package lifecycle_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/hotplug"
	"github.com/holomush/hotplug/hook"
	"github.com/holomush/hotplug/luaplugin"
)

// writePlugin lays out a plugin directory with a descriptor and entry script.
func writePlugin(root, name, descriptor, script string) string {
	dir := filepath.Join(root, name)
	Expect(os.MkdirAll(dir, 0o750)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, luaplugin.DescriptorFile), []byte(descriptor), 0o600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(dir, luaplugin.EntryFile), []byte(script), 0o600)).To(Succeed())
	return dir
}

// registerDir parses a plugin directory and registers it on the manager.
func registerDir(m *hotplug.Manager[string, struct{}], dir string) string {
	manifest, p, err := luaplugin.FromDir[struct{}](dir)
	Expect(err).NotTo(HaveOccurred())
	id, err := m.Register(manifest, func() hotplug.Plugin[string, struct{}] { return p })
	Expect(err).NotTo(HaveOccurred())
	return id
}

var _ = Describe("Descriptor-driven plugin lifecycle", func() {
	var (
		ctx  context.Context
		root string
		m    *hotplug.Manager[string, struct{}]
	)

	BeforeEach(func() {
		ctx = context.Background()
		root = GinkgoT().TempDir()
		m = hotplug.New[string, struct{}]()
	})

	Describe("Enabling a plugin with dependencies", func() {
		BeforeEach(func() {
			registerDir(m, writePlugin(root, "core", "name: core\nversion: 1.4.0\n", "ready = true\n"))
			registerDir(m, writePlugin(root, "chat", `
name: chat
version: 1.0.0
dependencies:
  - name: core
    constraint: ">=1.0.0 <2"
`, `
function handle(input)
	return "chat says " .. input
end
`))
		})

		It("auto-loads and enables the dependency chain", func() {
			Expect(m.Enable(ctx, "chat", struct{}{})).To(Succeed())

			Expect(m.IsEnabled("core")).To(BeTrue())
			Expect(m.IsEnabled("chat")).To(BeTrue())
		})

		It("publishes the chat handler capability", func() {
			Expect(m.Enable(ctx, "chat", struct{}{})).To(Succeed())

			handler, ok := hook.First(m.Hooks(), luaplugin.HandlerSlot, "chat")
			Expect(ok).To(BeTrue())

			out, err := handler(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("chat says hello"))
		})

		It("cascades unload through dependents and purges hooks", func() {
			Expect(m.Enable(ctx, "chat", struct{}{})).To(Succeed())

			report := m.Unload(ctx, "core", struct{}{})
			Expect(report.Unloaded).To(Equal([]string{"chat", "core"}))
			Expect(report.Disabled).To(Equal([]string{"chat", "core"}))

			Expect(hook.Exists(m.Hooks(), luaplugin.HandlerSlot, "chat")).To(BeFalse())
			Expect(m.Exists("chat")).To(BeTrue(), "registration survives unload")
		})

		It("re-enables after a full unload", func() {
			Expect(m.Enable(ctx, "chat", struct{}{})).To(Succeed())
			m.Unload(ctx, "core", struct{}{})

			Expect(m.Enable(ctx, "chat", struct{}{})).To(Succeed())
			Expect(hook.Exists(m.Hooks(), luaplugin.HandlerSlot, "chat")).To(BeTrue())
		})
	})

	Describe("Version constraints", func() {
		It("vetoes a dependency outside the declared range", func() {
			registerDir(m, writePlugin(root, "core", "name: core\nversion: 2.0.0\n", "ready = true\n"))
			registerDir(m, writePlugin(root, "chat", `
name: chat
version: 1.0.0
dependencies:
  - name: core
    constraint: "<2.0.0"
`, "ready = true\n"))

			err := m.Enable(ctx, "chat", struct{}{})
			Expect(err).To(HaveOccurred())
			Expect(hotplug.ErrorCode(err)).To(Equal(hotplug.CodeDependencyMismatch))
			Expect(m.IsLoaded("core")).To(BeFalse())
		})
	})

	Describe("Cycle rejection", func() {
		It("rejects the closing registration and leaves the rest intact", func() {
			registerDir(m, writePlugin(root, "a", "name: a\nversion: 1.0.0\ndependencies:\n  - name: b\n", "ready = true\n"))
			registerDir(m, writePlugin(root, "b", "name: b\nversion: 1.0.0\ndependencies:\n  - name: c\n", "ready = true\n"))

			manifest, p, err := luaplugin.FromDir[struct{}](
				writePlugin(root, "c", "name: c\nversion: 1.0.0\ndependencies:\n  - name: a\n", "ready = true\n"))
			Expect(err).NotTo(HaveOccurred())
			_, err = m.Register(manifest, func() hotplug.Plugin[string, struct{}] { return p })
			Expect(err).To(HaveOccurred())
			Expect(hotplug.ErrorCode(err)).To(Equal(hotplug.CodeCyclicDependency))

			Expect(m.Count()).To(Equal(2))
			Expect(m.Exists("c")).To(BeFalse())
		})
	})
})
