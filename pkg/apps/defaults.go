package apps

// Defaults returns the built-in launch targets for the given GOOS value.
// Unknown platforms get the Linux table.
func Defaults(goos string) map[string]Target {
	var src map[string]Target
	switch goos {
	case "windows":
		src = windowsDefaults
	case "darwin":
		src = darwinDefaults
	default:
		src = linuxDefaults
	}
	out := make(map[string]Target, len(src))
	for name, target := range src {
		out[name] = append(Target(nil), target...)
	}
	return out
}

var windowsDefaults = map[string]Target{
	"calculator":      {"calc.exe"},
	"calc":            {"calc.exe"},
	"notepad":         {"notepad.exe"},
	"paint":           {"mspaint.exe"},
	"explorer":        {"explorer.exe"},
	"file explorer":   {"explorer.exe"},
	"cmd":             {"cmd.exe"},
	"command prompt":  {"cmd.exe"},
	"powershell":      {"powershell.exe"},
	"task manager":    {"taskmgr.exe"},
	"control panel":   {"control.exe"},
	"settings":        {"ms-settings:"},
	"snipping tool":   {"snippingtool.exe"},
	"chrome":          {`C:\Program Files\Google\Chrome\Application\chrome.exe`},
	"edge":            {"msedge.exe"},
	"firefox":         {`C:\Program Files\Mozilla Firefox\firefox.exe`},
	"brave":           {`C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`},
	"vscode":          {"code"},
	"vs code":         {"code"},
	"spotify":         {"spotify:"},
	"discord":         {"discord:"},
	"steam":           {"steam://open/main"},
	"tf2":             {"steam://rungameid/440"},
	"team fortress 2": {"steam://rungameid/440"},
	"cs2":             {"steam://rungameid/730"},
	"dota 2":          {"steam://rungameid/570"},
}

var darwinDefaults = map[string]Target{
	"calculator":       {"-a", "Calculator"},
	"calc":             {"-a", "Calculator"},
	"textedit":         {"-a", "TextEdit"},
	"notepad":          {"-a", "TextEdit"},
	"finder":           {"-a", "Finder"},
	"terminal":         {"-a", "Terminal"},
	"settings":         {"-a", "System Settings"},
	"activity monitor": {"-a", "Activity Monitor"},
	"safari":           {"-a", "Safari"},
	"chrome":           {"-a", "Google Chrome"},
	"firefox":          {"-a", "Firefox"},
	"brave":            {"-a", "Brave Browser"},
	"vscode":           {"-a", "Visual Studio Code"},
	"vs code":          {"-a", "Visual Studio Code"},
	"spotify":          {"-a", "Spotify"},
	"discord":          {"-a", "Discord"},
	"steam":            {"steam://open/main"},
	"tf2":              {"steam://rungameid/440"},
	"cs2":              {"steam://rungameid/730"},
}

var linuxDefaults = map[string]Target{
	"calculator":     {"gnome-calculator"},
	"calc":           {"gnome-calculator"},
	"text editor":    {"gnome-text-editor"},
	"notepad":        {"gnome-text-editor"},
	"files":          {"nautilus"},
	"file manager":   {"nautilus"},
	"terminal":       {"x-terminal-emulator"},
	"settings":       {"gnome-control-center"},
	"system monitor": {"gnome-system-monitor"},
	"chrome":         {"google-chrome"},
	"chromium":       {"chromium"},
	"firefox":        {"firefox"},
	"brave":          {"brave-browser"},
	"vscode":         {"code"},
	"vs code":        {"code"},
	"spotify":        {"spotify"},
	"discord":        {"discord"},
	"steam":          {"steam"},
	"tf2":            {"steam", "steam://rungameid/440"},
	"cs2":            {"steam", "steam://rungameid/730"},
}
