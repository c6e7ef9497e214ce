package shell

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"shellquest/internal/cmdline"
	"shellquest/internal/netsim"
	"shellquest/internal/vfs"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	fs := vfs.New()
	base := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)
	step := 0
	fs.Now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	for _, dir := range []string{
		"/home/student/docs",
		"/home/student/temp_exfil",
		"/var/log",
	} {
		if err := fs.CreateDirectory(dir, true); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, f := range []struct {
		path, content string
	}{
		{"/home/student/notes.txt", "alpha\nBravo\ncharlie\n"},
		{"/home/student/docs/readme.md", "hello world\n"},
		{"/home/student/temp_exfil/a.bin", "xx"},
		{"/var/log/auth.log", "ok line\nFailed password for root\nok line\n"},
	} {
		if err := fs.WriteFile(f.path, f.content); err != nil {
			t.Fatalf("write %s: %v", f.path, err)
		}
	}

	net := netsim.New("quest-box", netsim.Host{
		Name:    "darkstar.net",
		Address: "203.0.113.66",
		Body:    "<html>\n<body>flag{recon}</body>\n</html>\n",
		Banner:  "DARKSTAR research node",
	})
	return &Env{
		FS:   fs,
		Net:  net,
		CWD:  "/home/student",
		Home: "/home/student",
		User: "student",
		Host: "quest-box",
	}
}

// run splits line, requires exactly one command, and executes it.
func run(t *testing.T, env *Env, line string) Result {
	t.Helper()
	segs, err := cmdline.Split(line)
	if err != nil {
		t.Fatalf("split %q: %v", line, err)
	}
	if len(segs) != 1 {
		t.Fatalf("want one command in %q, got %d", line, len(segs))
	}
	return NewDispatcher().Execute(env, segs[0])
}

func TestUnknownCommand(t *testing.T) {
	env := testEnv(t)
	res := run(t, env, "frobnicate now")
	if res.ExitCode != 127 {
		t.Fatalf("exit = %d, want 127", res.ExitCode)
	}
	want := "shellquest: frobnicate: command not found"
	if len(res.Stderr) != 1 || res.Stderr[0] != want {
		t.Errorf("stderr = %v, want [%s]", res.Stderr, want)
	}
}

func TestEmptyTokens(t *testing.T) {
	env := testEnv(t)
	res := NewDispatcher().Execute(env, nil)
	if res.ExitCode != 0 || len(res.Stdout) != 0 || len(res.Stderr) != 0 {
		t.Errorf("empty input should be a quiet no-op, got %+v", res)
	}
}

func TestLsDefault(t *testing.T) {
	env := testEnv(t)
	res := run(t, env, "ls")
	want := []string{"docs", "temp_exfil", "notes.txt"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("ls mismatch (-want +got):\n%s", diff)
	}
}

func TestLsAll(t *testing.T) {
	env := testEnv(t)
	res := run(t, env, "ls -a")
	want := []string{".", "..", "docs", "temp_exfil", "notes.txt"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("ls -a mismatch (-want +got):\n%s", diff)
	}
}

func TestLsLong(t *testing.T) {
	env := testEnv(t)
	res := run(t, env, "ls -l")
	if len(res.Stdout) != 3 {
		t.Fatalf("ls -l rows = %d, want 3: %v", len(res.Stdout), res.Stdout)
	}
	if !strings.HasPrefix(res.Stdout[0], "drwxr-xr-x  1 student student") {
		t.Errorf("dir row = %q", res.Stdout[0])
	}
	if !strings.HasSuffix(res.Stdout[0], " docs") {
		t.Errorf("dir row should end with name, got %q", res.Stdout[0])
	}
	if !strings.HasPrefix(res.Stdout[2], "-rw-r--r--  1 student student") {
		t.Errorf("file row = %q", res.Stdout[2])
	}
}

func TestLsOperands(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "ls notes.txt")
	if diff := cmp.Diff([]string{"notes.txt"}, res.Stdout); diff != "" {
		t.Errorf("file operand mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "ls nope")
	if res.ExitCode != 1 {
		t.Fatalf("exit = %d, want 1", res.ExitCode)
	}
	if want := "ls: nope: no such file or directory"; res.Stderr[0] != want {
		t.Errorf("stderr = %q, want %q", res.Stderr[0], want)
	}

	res = run(t, env, "ls docs /var/log")
	want := []string{"docs:", "readme.md", "", "/var/log:", "auth.log"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("multi operand mismatch (-want +got):\n%s", diff)
	}
}

func TestCdPwd(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "cd docs")
	if res.ExitCode != 0 {
		t.Fatalf("cd: %v", res.Stderr)
	}
	if res.Effect == nil || res.Effect.Kind != EffectChangedDir || res.Effect.Path != "/home/student/docs" {
		t.Fatalf("effect = %+v", res.Effect)
	}
	if env.CWD != "/home/student/docs" {
		t.Fatalf("CWD = %q", env.CWD)
	}

	// The mutation is visible to the very next command.
	res = run(t, env, "cat readme.md")
	if res.ExitCode != 0 || res.Stdout[0] != "hello world" {
		t.Fatalf("cat after cd: %+v", res)
	}

	res = run(t, env, "pwd")
	if diff := cmp.Diff([]string{"/home/student/docs"}, res.Stdout); diff != "" {
		t.Errorf("pwd mismatch (-want +got):\n%s", diff)
	}

	run(t, env, "cd ../..")
	if env.CWD != "/home" {
		t.Errorf("CWD after cd ../.. = %q", env.CWD)
	}

	run(t, env, "cd")
	if env.CWD != "/home/student" {
		t.Errorf("bare cd should return home, CWD = %q", env.CWD)
	}
}

func TestCdErrors(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "cd notes.txt")
	if res.ExitCode != 1 || res.Stderr[0] != "cd: notes.txt: not a directory" {
		t.Errorf("cd file: %+v", res)
	}
	res = run(t, env, "cd nowhere")
	if res.ExitCode != 1 || res.Stderr[0] != "cd: nowhere: no such file or directory" {
		t.Errorf("cd missing: %+v", res)
	}
	if env.CWD != "/home/student" {
		t.Errorf("failed cd must not move, CWD = %q", env.CWD)
	}
}

func TestMkdirCdPwdRoundTrip(t *testing.T) {
	env := testEnv(t)
	if res := run(t, env, "mkdir -p a/b/c"); res.ExitCode != 0 {
		t.Fatalf("mkdir -p: %v", res.Stderr)
	}
	if res := run(t, env, "cd a/b/c"); res.ExitCode != 0 {
		t.Fatalf("cd: %v", res.Stderr)
	}
	res := run(t, env, "pwd")
	if diff := cmp.Diff([]string{"/home/student/a/b/c"}, res.Stdout); diff != "" {
		t.Errorf("pwd mismatch (-want +got):\n%s", diff)
	}
}

func TestMkdirErrors(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "mkdir docs")
	if res.ExitCode != 1 || res.Stderr[0] != "mkdir: docs: file exists" {
		t.Errorf("mkdir existing: %+v", res)
	}
	if res := run(t, env, "mkdir -p docs"); res.ExitCode != 0 {
		t.Errorf("mkdir -p existing should be quiet: %+v", res)
	}
	res = run(t, env, "mkdir x/y")
	if res.ExitCode != 1 {
		t.Errorf("mkdir without parents should fail: %+v", res)
	}
	if res := run(t, env, "mkdir"); res.ExitCode != 2 {
		t.Errorf("mkdir without operands: %+v", res)
	}
}

func TestCat(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "cat notes.txt")
	want := []string{"alpha", "Bravo", "charlie"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("cat mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "cat notes.txt missing.txt")
	if res.ExitCode != 1 {
		t.Errorf("partial failure exit = %d, want 1", res.ExitCode)
	}
	if res.Stderr[0] != "cat: missing.txt: no such file or directory" {
		t.Errorf("stderr = %q", res.Stderr[0])
	}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("good operand should still print (-want +got):\n%s", diff)
	}

	res = run(t, env, "cat docs")
	if res.ExitCode != 1 || res.Stderr[0] != "cat: docs: is a directory" {
		t.Errorf("cat dir: %+v", res)
	}
	if res := run(t, env, "cat"); res.ExitCode != 2 {
		t.Errorf("cat without operands: %+v", res)
	}
}

func TestRmdir(t *testing.T) {
	env := testEnv(t)
	run(t, env, "mkdir empty")

	if res := run(t, env, "rmdir empty"); res.ExitCode != 0 {
		t.Fatalf("rmdir empty: %v", res.Stderr)
	}
	res := run(t, env, "rmdir docs")
	if res.ExitCode != 1 || res.Stderr[0] != "rmdir: docs: directory not empty" {
		t.Errorf("rmdir non-empty: %+v", res)
	}
	res = run(t, env, "rmdir notes.txt")
	if res.ExitCode != 1 || res.Stderr[0] != "rmdir: notes.txt: not a directory" {
		t.Errorf("rmdir file: %+v", res)
	}
}

func TestRm(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "rm docs")
	if res.ExitCode != 1 || res.Stderr[0] != "rm: docs: is a directory" {
		t.Errorf("rm dir without -r: %+v", res)
	}

	res = run(t, env, "rm missing.txt")
	if res.ExitCode != 1 || res.Stderr[0] != "rm: missing.txt: no such file or directory" {
		t.Errorf("rm missing: %+v", res)
	}
	if res := run(t, env, "rm -f missing.txt"); res.ExitCode != 0 {
		t.Errorf("rm -f missing should be quiet: %+v", res)
	}

	if res := run(t, env, "rm notes.txt"); res.ExitCode != 0 {
		t.Fatalf("rm file: %v", res.Stderr)
	}
	if env.FS.Exists("/home/student/notes.txt") {
		t.Error("notes.txt survived rm")
	}
}

func TestRmRecursiveCleanup(t *testing.T) {
	env := testEnv(t)

	if res := run(t, env, "rm -rf temp_exfil"); res.ExitCode != 0 {
		t.Fatalf("rm -rf: %v", res.Stderr)
	}
	res := run(t, env, "ls")
	for _, name := range res.Stdout {
		if name == "temp_exfil" {
			t.Fatal("temp_exfil still listed after rm -rf")
		}
	}
	if env.FS.Exists("/home/student/temp_exfil") {
		t.Error("temp_exfil still present in the tree")
	}
}

func TestRmForceDoesNotMaskDirRefusal(t *testing.T) {
	env := testEnv(t)
	res := run(t, env, "rm -f docs")
	if res.ExitCode != 1 || res.Stderr[0] != "rm: docs: is a directory" {
		t.Errorf("rm -f dir: %+v", res)
	}
}

func TestCp(t *testing.T) {
	env := testEnv(t)

	if res := run(t, env, "cp notes.txt copy.txt"); res.ExitCode != 0 {
		t.Fatalf("cp: %v", res.Stderr)
	}
	got, err := env.FS.ReadFile("/home/student/copy.txt")
	if err != nil || got != "alpha\nBravo\ncharlie\n" {
		t.Fatalf("copy content = %q, %v", got, err)
	}

	res := run(t, env, "cp docs docs2")
	if res.ExitCode != 1 || !strings.Contains(res.Stderr[0], "is a directory") {
		t.Errorf("cp dir without -r: %+v", res)
	}
	if res := run(t, env, "cp -r docs docs2"); res.ExitCode != 0 {
		t.Fatalf("cp -r: %v", res.Stderr)
	}
	if !env.FS.Exists("/home/student/docs2/readme.md") {
		t.Error("recursive copy lost readme.md")
	}
	if res := run(t, env, "cp notes.txt"); res.ExitCode != 2 {
		t.Errorf("cp with one operand: %+v", res)
	}
}

func TestMv(t *testing.T) {
	env := testEnv(t)

	if res := run(t, env, "mv notes.txt renamed.txt"); res.ExitCode != 0 {
		t.Fatalf("mv: %v", res.Stderr)
	}
	if env.FS.Exists("/home/student/notes.txt") {
		t.Error("source survived mv")
	}
	if !env.FS.Exists("/home/student/renamed.txt") {
		t.Error("destination missing after mv")
	}

	res := run(t, env, "mv ghost.txt other.txt")
	if res.ExitCode != 1 || !strings.Contains(res.Stderr[0], "no such file or directory") {
		t.Errorf("mv missing: %+v", res)
	}
}

func TestTouch(t *testing.T) {
	env := testEnv(t)

	if res := run(t, env, "touch fresh.txt"); res.ExitCode != 0 {
		t.Fatalf("touch: %v", res.Stderr)
	}
	entry, err := env.FS.Stat("/home/student/fresh.txt")
	if err != nil || entry.IsDir || entry.Size != 0 {
		t.Fatalf("fresh.txt entry = %+v, %v", entry, err)
	}
	if res := run(t, env, "touch docs"); res.ExitCode != 0 {
		t.Errorf("touch on a directory should be quiet: %+v", res)
	}
	if res := run(t, env, "touch ghost/child.txt"); res.ExitCode != 1 {
		t.Errorf("touch under missing parent: %+v", res)
	}
}

func TestHeadTail(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "head -n 2 notes.txt")
	if diff := cmp.Diff([]string{"alpha", "Bravo"}, res.Stdout); diff != "" {
		t.Errorf("head -n 2 mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "head -2 notes.txt")
	if diff := cmp.Diff([]string{"alpha", "Bravo"}, res.Stdout); diff != "" {
		t.Errorf("head -2 mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "tail -n1 notes.txt")
	if diff := cmp.Diff([]string{"charlie"}, res.Stdout); diff != "" {
		t.Errorf("tail -n1 mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "head notes.txt")
	if len(res.Stdout) != 3 {
		t.Errorf("default head should print the whole short file, got %v", res.Stdout)
	}

	res = run(t, env, "head -n xyz notes.txt")
	if res.ExitCode != 2 || !strings.Contains(res.Stderr[0], `invalid number "xyz"`) {
		t.Errorf("head bad count: %+v", res)
	}

	res = run(t, env, "tail missing.txt")
	if res.ExitCode != 1 {
		t.Errorf("tail missing: %+v", res)
	}
}

func TestGrep(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "grep charlie notes.txt")
	if res.ExitCode != 0 {
		t.Fatalf("exit = %d, want 0", res.ExitCode)
	}
	if diff := cmp.Diff([]string{"charlie"}, res.Stdout); diff != "" {
		t.Errorf("grep mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "grep -i bravo notes.txt")
	if diff := cmp.Diff([]string{"Bravo"}, res.Stdout); diff != "" {
		t.Errorf("grep -i mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "grep -n charlie notes.txt")
	if diff := cmp.Diff([]string{"3:charlie"}, res.Stdout); diff != "" {
		t.Errorf("grep -n mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "grep -v a notes.txt")
	if diff := cmp.Diff([]string{"Bravo"}, res.Stdout); diff != "" {
		t.Errorf("grep -v mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "grep zebra notes.txt")
	if res.ExitCode != 1 || len(res.Stdout) != 0 {
		t.Errorf("no match should be exit 1 and silent: %+v", res)
	}

	res = run(t, env, "grep charlie missing.txt")
	if res.ExitCode != 2 || res.Stderr[0] != "grep: missing.txt: no such file or directory" {
		t.Errorf("grep missing file: %+v", res)
	}
}

func TestGrepRecursive(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "grep -r Failed /var/log")
	if res.ExitCode != 0 {
		t.Fatalf("exit = %d, want 0", res.ExitCode)
	}
	want := []string{"/var/log/auth.log:Failed password for root"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("grep -r mismatch (-want +got):\n%s", diff)
	}

	// With no file operand -r searches the working directory; the flag
	// itself must never be taken for a filename.
	res = run(t, env, "grep -r zebra")
	if res.ExitCode != 1 {
		t.Errorf("exit = %d, want 1 (no match, no missing-file error)", res.ExitCode)
	}
	if len(res.Stderr) != 0 {
		t.Errorf("stderr should be empty, got %v", res.Stderr)
	}
}

func TestFind(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, `find . -name "*.txt"`)
	if diff := cmp.Diff([]string{"./notes.txt"}, res.Stdout); diff != "" {
		t.Errorf("find -name mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "find . -type d")
	want := []string{".", "./docs", "./temp_exfil"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("find -type d mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "find /var -type f")
	if diff := cmp.Diff([]string{"/var/log/auth.log"}, res.Stdout); diff != "" {
		t.Errorf("find /var mismatch (-want +got):\n%s", diff)
	}

	res = run(t, env, "find nowhere")
	if res.ExitCode != 1 {
		t.Errorf("find missing start: %+v", res)
	}
	res = run(t, env, "find . -type x")
	if res.ExitCode != 2 {
		t.Errorf("find bad type: %+v", res)
	}
}

func TestPagers(t *testing.T) {
	env := testEnv(t)
	want := []string{"alpha", "Bravo", "charlie"}

	for _, name := range []string{"more", "less"} {
		res := run(t, env, name+" notes.txt")
		if diff := cmp.Diff(want, res.Stdout); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
		if res := run(t, env, name); res.ExitCode != 2 {
			t.Errorf("%s without operand: %+v", name, res)
		}
	}
}

func TestEcho(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "echo hello world")
	if diff := cmp.Diff([]string{"hello world"}, res.Stdout); diff != "" {
		t.Errorf("echo mismatch (-want +got):\n%s", diff)
	}
	res = run(t, env, `echo "two  spaces kept"`)
	if diff := cmp.Diff([]string{"two  spaces kept"}, res.Stdout); diff != "" {
		t.Errorf("quoted echo mismatch (-want +got):\n%s", diff)
	}
	res = run(t, env, "echo")
	if diff := cmp.Diff([]string{""}, res.Stdout); diff != "" {
		t.Errorf("bare echo mismatch (-want +got):\n%s", diff)
	}
}

func TestHelp(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "help")
	if res.ExitCode != 0 || len(res.Stdout) < 20 {
		t.Fatalf("help listed %d commands", len(res.Stdout))
	}
	found := false
	for _, line := range res.Stdout {
		if strings.HasPrefix(line, "ls ") {
			found = true
		}
	}
	if !found {
		t.Error("help listing is missing ls")
	}

	res = run(t, env, "help grep")
	if res.ExitCode != 0 || res.Stdout[0] != "usage: grep [-inrv] PATTERN [FILE...]" {
		t.Errorf("help grep: %+v", res)
	}
	res = run(t, env, "help frobnicate")
	if res.ExitCode != 1 {
		t.Errorf("help unknown: %+v", res)
	}
}

func TestHistory(t *testing.T) {
	env := testEnv(t)
	env.History = []string{"ls", "cd docs"}
	res := run(t, env, "history")
	want := []string{"    1  ls", "    2  cd docs"}
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentityCommands(t *testing.T) {
	env := testEnv(t)
	if res := run(t, env, "whoami"); res.Stdout[0] != "student" {
		t.Errorf("whoami = %v", res.Stdout)
	}
	if res := run(t, env, "hostname"); res.Stdout[0] != "quest-box" {
		t.Errorf("hostname = %v", res.Stdout)
	}
}

func TestClearAndExit(t *testing.T) {
	env := testEnv(t)

	res := run(t, env, "clear")
	if res.Effect == nil || res.Effect.Kind != EffectClearScreen {
		t.Errorf("clear effect = %+v", res.Effect)
	}

	res = run(t, env, "exit")
	if res.Effect == nil || res.Effect.Kind != EffectSessionClosed || res.Effect.Code != 0 {
		t.Errorf("exit effect = %+v", res.Effect)
	}
	res = run(t, env, "exit 3")
	if res.ExitCode != 3 || res.Effect == nil || res.Effect.Code != 3 {
		t.Errorf("exit 3: %+v", res)
	}
	res = run(t, env, "exit abc")
	if res.ExitCode != 2 || res.Stderr[0] != "exit: abc: numeric argument required" {
		t.Errorf("exit abc: %+v", res)
	}
}

func TestParseErrorReportsUsage(t *testing.T) {
	env := testEnv(t)
	res := run(t, env, "head -n")
	if res.ExitCode != 2 {
		t.Fatalf("exit = %d, want 2", res.ExitCode)
	}
	if !strings.Contains(res.Stderr[0], "option requires an argument") {
		t.Errorf("stderr[0] = %q", res.Stderr[0])
	}
	if res.Stderr[1] != "usage: head [-n COUNT] FILE" {
		t.Errorf("stderr[1] = %q", res.Stderr[1])
	}
}

func TestDoubleDashLiteralOperands(t *testing.T) {
	env := testEnv(t)

	if res := run(t, env, "touch -- -r"); res.ExitCode != 0 {
		t.Fatalf("touch -- -r: %v", res.Stderr)
	}
	if !env.FS.Exists("/home/student/-r") {
		t.Fatal("file named -r was not created")
	}
	if res := run(t, env, "rm -- -r"); res.ExitCode != 0 {
		t.Fatalf("rm -- -r: %v", res.Stderr)
	}
	if env.FS.Exists("/home/student/-r") {
		t.Error("file named -r survived rm")
	}
}

func TestHomeExpansion(t *testing.T) {
	env := testEnv(t)
	run(t, env, "cd /var/log")

	res := run(t, env, "ls ~/docs")
	if diff := cmp.Diff([]string{"readme.md"}, res.Stdout); diff != "" {
		t.Errorf("ls ~/docs mismatch (-want +got):\n%s", diff)
	}
	run(t, env, "cd ~")
	if env.CWD != "/home/student" {
		t.Errorf("cd ~ landed on %q", env.CWD)
	}
}
