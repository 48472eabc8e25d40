package batch

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// ImagePath returns the path of an image relative to the output root:
// <stimulus>/<set_size>/<condition>/<stimulus>_set_size_<n>_target_<condition>_<i>.png
func ImagePath(stim string, setSize int, condition string, imgNum int) string {
	name := fmt.Sprintf("%s_set_size_%d_target_%s_%d.png", stim, setSize, condition, imgNum)
	return filepath.Join(GroupDir(stim, setSize, condition), name)
}

// MetaPath returns the metadata file that sits next to an image.
func MetaPath(imgPath string) string {
	return imgPath[:len(imgPath)-len(filepath.Ext(imgPath))] + ".meta.json"
}

// GroupDir returns the directory of one group relative to the output root.
func GroupDir(stim string, setSize int, condition string) string {
	return filepath.Join(stim, strconv.Itoa(setSize), condition)
}
