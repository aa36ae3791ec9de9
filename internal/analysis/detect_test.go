package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zip2job/zip2job/internal/consent"
	"github.com/zip2job/zip2job/internal/ingest"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func detectMatcher() *ingest.Matcher {
	return ingest.NewMatcher(consent.DefaultIgnorePatterns())
}

func TestDetectPythonWithFramework(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pyproject.toml": "[project]\ndependencies = [\"fastapi\", \"uvicorn\"]\n",
		"app/main.py":    "print('x')\n",
		"app/api.py":     "print('y')\n",
	})
	language, framework := Detect(root, detectMatcher())
	if language != LangPython || framework != "FastAPI" {
		t.Fatalf("got (%q, %q)", language, framework)
	}
}

func TestDetectSinglePythonFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py":   "print('x')\n",
		"README.md": "# demo\n",
	})
	language, framework := Detect(root, detectMatcher())
	if language != LangPython {
		t.Fatalf("language: %q", language)
	}
	if framework != "" {
		t.Fatalf("framework should be absent, got %q", framework)
	}
}

func TestDetectTypeScriptReact(t *testing.T) {
	root := writeTree(t, map[string]string{
		"package.json": `{"dependencies": {"react": "^18.0.0", "react-dom": "^18.0.0"}}`,
		"src/App.tsx":  "export const App = () => null;\n",
		"src/index.ts": "import './App';\n",
	})
	language, framework := Detect(root, detectMatcher())
	if language != LangTypeScript {
		t.Fatalf("language: %q", language)
	}
	if framework != "React" {
		t.Fatalf("framework: %q", framework)
	}
}

func TestDetectJavaSpring(t *testing.T) {
	root := writeTree(t, map[string]string{
		"pom.xml":                    "<project><dependencies><artifactId>spring-boot-starter-web</artifactId></dependencies></project>",
		"src/main/java/App.java":     "public class App {}\n",
		"src/main/java/Service.java": "public class Service {}\n",
	})
	language, framework := Detect(root, detectMatcher())
	if language != LangJava || framework != "Spring Boot" {
		t.Fatalf("got (%q, %q)", language, framework)
	}
}

func TestDetectNothing(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md": "# docs only\n",
		"notes.txt": "nothing to see\n",
	})
	language, framework := Detect(root, detectMatcher())
	if language != "" || framework != "" {
		t.Fatalf("expected no detection, got (%q, %q)", language, framework)
	}
}

func TestDetectIgnoresVendoredTrees(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py":                        "print('x')\n",
		"node_modules/pkg/index.js":      "1\n",
		"node_modules/pkg/lib/more.js":   "2\n",
		"node_modules/pkg/lib/extra.js":  "3\n",
		"node_modules/pkg/package.json":  "{}",
	})
	language, _ := Detect(root, detectMatcher())
	if language != LangPython {
		t.Fatalf("vendored javascript must not win: %q", language)
	}
}
