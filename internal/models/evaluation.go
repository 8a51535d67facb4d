package models

type (
	// Repository is a repository owned by the configured user.
	Repository struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	}

	// BranchRef is one branch of a repository and its head commit.
	BranchRef struct {
		Name      string `json:"name"`
		CommitSHA string `json:"commit_sha"`
		CommitURL string `json:"commit_url"`
		Protected bool   `json:"protected,omitempty"`
	}

	// TreeNode is an entry of a recursive git tree.
	TreeNode struct {
		Path string
		Mode string
		Type string
		SHA  string
		Size *int
	}

	// Tree is a recursive tree listing. Truncated means the API cut the
	// listing short and some nodes may be missing.
	Tree struct {
		SHA       string
		Truncated bool
		Nodes     []TreeNode
	}

	// FileContent is a single file as returned by the contents endpoint.
	FileContent struct {
		Name     string
		Path     string
		SHA      string
		Size     int
		Encoding string
		Content  string
	}

	// FilePayload is a source file ready to be embedded in a prompt.
	FilePayload struct {
		FileName string
		Decoded  string
		Encoded  string
	}

	// GradingInstructions are the optional fields the instructor fills in.
	GradingInstructions struct {
		Assessment          string
		Criteria            string
		ExampleOutput       string
		ReferenceAssessment string
	}
)

const (
	TreeNodeBlob = "blob"
	TreeNodeTree = "tree"
)

// BranchPromptRecord is the cached unit of work for a branch: the prompt
// and, once executed, the evaluation result.
type BranchPromptRecord struct {
	Branch      string `json:"branch"`
	Prompt      string `json:"prompt"`
	FileCount   int    `json:"filesCount"`
	GeneratedAt string `json:"generatedAt"`
	Truncated   bool   `json:"truncated,omitempty"`
	Result      string `json:"result,omitempty"`
	Running     bool   `json:"-"`
}

// HasResult reports whether the record has been executed.
func (r BranchPromptRecord) HasResult() bool {
	return r.Result != ""
}
