package scene

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the YAML file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtinGroup = "Built-in Scenes"

type builtin struct {
	info  SceneInfo
	build func() Description
}

var builtins = []builtin{
	{
		info:  SceneInfo{ID: "cornell", Name: "Cornell Box", Description: "Cornell box made of large spheres with a spherical light"},
		build: NewCornellDescription,
	},
	{
		info:  SceneInfo{ID: "spheres", Name: "Default Scene", Description: "Three diffuse spheres on a ground sphere"},
		build: NewDefaultDescription,
	},
	{
		info:  SceneInfo{ID: "emissive-fill", Name: "Emissive Fill", Description: "Camera enclosed by a single emitter"},
		build: NewEmissiveFillDescription,
	},
	{
		info:  SceneInfo{ID: "emissive-wall", Name: "Emissive Wall", Description: "Lit diffuse emitter filling the view from outside"},
		build: NewEmissiveWallDescription,
	},
	{
		info:  SceneInfo{ID: "dark-sphere", Name: "Dark Sphere", Description: "One diffuse sphere and no lights"},
		build: NewDarkSphereDescription,
	},
}

// Builtin returns the description of a built-in scene by ID
func Builtin(id string) (Description, bool) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.build(), true
		}
	}
	return Description{}, false
}

// BuiltinNames returns the IDs of every built-in scene
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.info.ID
	}
	return names
}

// ListBuiltinScenes returns the metadata of the built-in scenes
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtins))
	for i, b := range builtins {
		info := b.info
		info.DisplayName = info.Name
		info.Group = builtinGroup
		info.Type = "builtin"
		scenes[i] = info
	}
	return scenes
}

// ListSceneFiles scans dir for YAML scene files and returns their metadata.
// A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan scenes directory")
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Keep the fallback metadata; the file may still load
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata extracts metadata from the header comments of a scene file:
//
//	# Scene: Three Spheres
//	# Description: ...
//	# Group: Examples
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	// Extract filename without extension for fallback values
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	// Create SceneInfo with fallback values
	sceneInfo := SceneInfo{
		ID:          "file:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files", // Default group
		Type:        "file",
		FilePath:    filePath,
	}

	// Open file to read header comments
	file, err := os.Open(filePath)
	if err != nil {
		return sceneInfo, errors.Wrapf(err, "failed to open %s", filePath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			sceneInfo.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			sceneInfo.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case strings.HasPrefix(content, "Group:"):
			sceneInfo.Group = strings.TrimSpace(strings.TrimPrefix(content, "Group:"))
		}
	}
	sceneInfo.DisplayName = sceneInfo.Name

	return sceneInfo, scanner.Err()
}

// ListAllScenes returns both built-in and file scenes, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListSceneFiles(dir)
	if err != nil {
		return response, errors.Wrap(err, "failed to list scene files")
	}

	// Combine all scenes
	allScenes := append(ListBuiltinScenes(), fileScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Create ordered groups (Built-in first, then alphabetical)
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: groupMap[builtinGroup],
	})

	// Add other groups alphabetically
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
