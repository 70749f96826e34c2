package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var tabletCreateToolDef = mcp.NewTool("tablet_create",
	mcp.WithDescription("Create a new tablet (.auratab) session file for long-term memory. Returns the catalog ID and file path."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable session title")),
	mcp.WithString("summary", mcp.Description("Short description of the session")),
	mcp.WithString("name", mcp.Description("File stem; defaults to a date-based name")),
	mcp.WithString("author", mcp.Description("Session author")),
	mcp.WithArray("tags", mcp.Description("Tags; 'temporary' sessions age out after 30 days unless tagged 'saved'"),
		mcp.Items(map[string]any{"type": "string"})),
)

var tabletAddEntryToolDef = mcp.NewTool("tablet_add_entry",
	mcp.WithDescription("Append a file-change entry (path, diff, notes) to an existing tablet."),
	mcp.WithString("target", mcp.Required(), mcp.Description("Catalog ID or file path of the tablet")),
	mcp.WithString("path", mcp.Required(), mcp.Description("Repository-relative path of the changed file")),
	mcp.WithString("diff", mcp.Description("What changed")),
	mcp.WithString("notes", mcp.Description("Free-form notes about the change")),
)

var capsuleCreateToolDef = mcp.NewTool("capsule_create",
	mcp.WithDescription("Create a new capsule (.auractx) for the active session's working context."),
	mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
	mcp.WithString("summary", mcp.Description("Short description of the session")),
	mcp.WithString("name", mcp.Description("File stem; defaults to a date-based name")),
	mcp.WithString("author", mcp.Description("Session author")),
	mcp.WithString("branch", mcp.Description("VCS branch being worked on")),
	mcp.WithString("objective", mcp.Description("Initial task objective section")),
)

var capsuleSetSectionToolDef = mcp.NewTool("capsule_set_section",
	mcp.WithDescription("Set a named section in a capsule. Replaces any existing section with the same name unless append is true."),
	mcp.WithString("target", mcp.Required(), mcp.Description("Catalog ID or file path of the capsule")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Section name, e.g. task_objective, relevant_files, working_plan, error_state")),
	mcp.WithString("kind", mcp.Description("Payload kind: text (default), json, or binary")),
	mcp.WithString("content", mcp.Description("Section content")),
	mcp.WithBoolean("append", mcp.Description("Keep existing sections with the same name")),
)

var capsuleExportToolDef = mcp.NewTool("capsule_export",
	mcp.WithDescription("Archive a capsule into a new tablet: each section becomes an entry. Optionally deletes the capsule afterwards."),
	mcp.WithString("target", mcp.Required(), mcp.Description("Catalog ID or file path of the capsule")),
	mcp.WithString("name", mcp.Description("File stem for the new tablet")),
	mcp.WithBoolean("delete", mcp.Description("Remove the capsule after a successful export")),
)

var sessionFetchToolDef = mcp.NewTool("session_fetch",
	mcp.WithDescription("Fetch the decoded contents of a session file, dispatching on its magic bytes."),
	mcp.WithString("target", mcp.Required(), mcp.Description("Catalog ID or file path")),
)

var sessionListToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List cataloged sessions, newest first."),
	mcp.WithString("kind", mcp.Description("Filter: tablet or capsule")),
	mcp.WithString("tag", mcp.Description("Filter by tag")),
	mcp.WithNumber("limit", mcp.Description("Maximum records to return (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Records to skip")),
)

var sessionHealthToolDef = mcp.NewTool("session_health",
	mcp.WithDescription("Check whether a session is getting too big, too old, or too repetitive. Reports HEALTHY, WARNING, or CRITICAL with issues."),
	mcp.WithString("target", mcp.Required(), mcp.Description("Catalog ID or file path")),
)

var sessionCleanupToolDef = mcp.NewTool("session_cleanup",
	mcp.WithDescription("Delete temporary sessions older than the auto-delete window. Sessions tagged 'saved' are kept."),
	mcp.WithBoolean("dry_run", mcp.Description("Report candidates without deleting")),
)

var sessionDeleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Delete a session file and its catalog row."),
	mcp.WithString("target", mcp.Required(), mcp.Description("Catalog ID or file path")),
)

var memoryDigestToolDef = mcp.NewTool("memory_digest",
	mcp.WithDescription("Build a deduplicated context digest from recent tablets, within the context budget."),
	mcp.WithNumber("max_tablets", mcp.Description("How many recent tablets to read (default 10)")),
)
