// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"gocloud.dev/blob"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	err := run(context.Background(), &Config{ConfigPath: "testdata/pipelines.yaml"}, &buf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := "even-square-sum: 220\nproduct: 24\ncoldest: -3.25\n"
	if got := buf.String(); got != want {
		t.Errorf("run output got %q, want %q", got, want)
	}
}

func TestRunDump(t *testing.T) {
	var buf bytes.Buffer
	err := run(context.Background(), &Config{ConfigPath: "testdata/pipelines.yaml", Dump: true}, &buf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if got, want := len(lines), 3; got != want {
		t.Fatalf("dump printed %d graphs, want %d", got, want)
	}
	wantNames := []string{"even-square-sum", "product", "coldest"}
	for i, line := range lines {
		var d struct {
			Name       string `json:"name"`
			Transforms []any  `json:"transforms"`
		}
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			t.Fatalf("dump line %d isn't JSON: %v\n%s", i, err, line)
		}
		if d.Name != wantNames[i] {
			t.Errorf("dump line %d name got %q, want %q", i, d.Name, wantNames[i])
		}
		if len(d.Transforms) == 0 {
			t.Errorf("dump line %d has no transforms", i)
		}
	}
}

func TestRunFromBucket(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	url := "file://" + dir

	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		t.Fatalf("opening bucket %q: %v", url, err)
	}
	if err := bucket.WriteAll(ctx, "numbers.txt", []byte("1\n2\n3\n"), nil); err != nil {
		t.Fatalf("writing numbers.txt: %v", err)
	}
	bucket.Close()

	config := filepath.Join(dir, "config.yaml")
	body := "pipelines:\n" +
		"  - name: from-bucket\n" +
		"    input_url: " + url + "\n" +
		"    input_keys: [numbers.txt]\n" +
		"    reduce: sum\n"
	if err := os.WriteFile(config, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	var buf bytes.Buffer
	if err := run(ctx, &Config{ConfigPath: config}, &buf); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got, want := buf.String(), "from-bucket: 6\n"; got != want {
		t.Errorf("run output got %q, want %q", got, want)
	}
}

func TestRunBadConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "config.yaml")
	body := "pipelines:\n" +
		"  - name: broken\n" +
		"    input: [1]\n" +
		"    filter: prime\n"
	if err := os.WriteFile(config, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	var buf bytes.Buffer
	err := run(context.Background(), &Config{ConfigPath: config}, &buf)
	if err == nil {
		t.Fatal("run succeeded, want unknown filter error")
	}
	if !strings.Contains(err.Error(), "unknown filter") {
		t.Errorf("run error %q doesn't mention the unknown filter", err)
	}
}
