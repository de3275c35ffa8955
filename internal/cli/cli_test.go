package cli

import (
	"bytes"
	"strings"
	"testing"

	"ticker-drift-alerts/internal/version"
)

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version 命令不应报错: %v", err)
	}
	if !strings.Contains(out.String(), "commit: "+version.Commit) {
		t.Fatalf("输出缺少 commit 信息: %s", out.String())
	}
}

func TestSimulateRejectsNonPositivePrices(t *testing.T) {
	t.Chdir(t.TempDir())

	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"simulate-alert", "--reference", "0", "--current", "2000"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("参考价为 0 时应报错")
	}
	if errOut.Len() != 0 {
		t.Fatalf("错误只应由 Execute 打印一次，cobra 不应再输出: %q", errOut.String())
	}
}
