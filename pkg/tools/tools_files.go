package tools

import "context"

type fileNameArgs struct {
	FileName string `json:"file_name"`
}

func readFileTool(d Deps) tool {
	return typedTool[fileNameArgs]{
		schema: schema{
			name:        "read_file",
			description: "Reads the text content of a file on the user's PC so you can analyze code or text.",
			params: []param{
				{name: "file_name", description: "Path of the file to read.", required: true},
			},
		},
		run: func(_ context.Context, args fileNameArgs) Result {
			return d.FS.Read(args.FileName)
		},
	}
}

type writeFileArgs struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

func writeFileTool(d Deps) tool {
	return typedTool[writeFileArgs]{
		schema: schema{
			name: "write_file",
			description: "Writes content to a file on the user's PC, creating it and any missing folders. " +
				"Existing files are overwritten, so read them with read_file first and write the full updated content.",
			params: []param{
				{name: "file_name", description: "Path of the file to write.", required: true},
				{name: "content", description: "Full file contents to write.", required: true},
			},
		},
		run: func(_ context.Context, args writeFileArgs) Result {
			return d.FS.Write(args.FileName, args.Content)
		},
	}
}

type pathArgs struct {
	Path string `json:"path"`
}

func removePathTool(d Deps) tool {
	return typedTool[pathArgs]{
		schema: schema{
			name:        "remove_path",
			description: "Deletes a file or a folder (recursively). Read-only entries are made writable and deletion is retried once.",
			params: []param{
				{name: "path", description: "Path of the file or folder to delete.", required: true},
			},
		},
		run: func(_ context.Context, args pathArgs) Result {
			d.Logger.Warn("removing path", map[string]any{"path": args.Path})
			return d.FS.Remove(args.Path)
		},
	}
}

type moveArgs struct {
	Path        string `json:"path"`
	Destination string `json:"destination"`
}

func movePathTool(d Deps) tool {
	return typedTool[moveArgs]{
		schema: schema{
			name:        "move_path",
			description: "Moves a file or folder. If the destination is an existing folder the item is moved inside it.",
			params: []param{
				{name: "path", description: "Path of the file or folder to move.", required: true},
				{name: "destination", description: "Destination path or folder.", required: true},
			},
		},
		run: func(_ context.Context, args moveArgs) Result {
			d.Logger.Info("moving path", map[string]any{"path": args.Path, "destination": args.Destination})
			return d.FS.Move(args.Path, args.Destination)
		},
	}
}

type renameArgs struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

func renamePathTool(d Deps) tool {
	return typedTool[renameArgs]{
		schema: schema{
			name: "rename_path",
			description: "Renames a file or folder. Both names can be paths (e.g. 'project/main.py' to 'project/bot.py') " +
				"or bare names relative to the working directory.",
			params: []param{
				{name: "old_name", description: "Current name or path.", required: true},
				{name: "new_name", description: "New name or path.", required: true},
			},
		},
		run: func(_ context.Context, args renameArgs) Result {
			d.Logger.Info("renaming path", map[string]any{"old": args.OldName, "new": args.NewName})
			return d.FS.Rename(args.OldName, args.NewName)
		},
	}
}

type folderArgs struct {
	FolderName string `json:"folder_name"`
}

func createFolderTool(d Deps) tool {
	return typedTool[folderArgs]{
		schema: schema{
			name:        "create_folder",
			description: "Creates a folder on the user's PC to help with project management. Parent folders must already exist.",
			params: []param{
				{name: "folder_name", description: "Path of the folder to create.", required: true},
			},
		},
		run: func(_ context.Context, args folderArgs) Result {
			return d.FS.CreateFolder(args.FolderName)
		},
	}
}

type directoryArgs struct {
	Directory string `json:"directory"`
}

func checkPathTool(d Deps) tool {
	return typedTool[directoryArgs]{
		schema: schema{
			name:        "check_path",
			description: "Lists the files and folders in a directory. Defaults to the current working directory.",
			params: []param{
				{name: "directory", description: "Directory to list. Defaults to '.'."},
			},
		},
		run: func(_ context.Context, args directoryArgs) Result {
			return d.FS.List(args.Directory)
		},
	}
}
