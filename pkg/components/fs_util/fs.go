/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fs_util

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CopyLocalFile copies a file between two paths of the local file system and creates missing parent directories.
func CopyLocalFile(dstPath, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	fileInfo, err := src.Stat()
	if err != nil {
		return err
	}
	if fileInfo.IsDir() {
		return errors.New("not a file: " + srcPath)
	}
	if err = os.MkdirAll(path.Dir(dstPath), 0775); err != nil {
		return err
	}
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileInfo.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err = io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}

func DirSize(dirPath string) (uint64, error) {
	var size uint64
	err := filepath.WalkDir(dirPath, func(_ string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !dirEntry.IsDir() {
			fileInfo, err := dirEntry.Info()
			if err != nil {
				return err
			}
			size += uint64(fileInfo.Size())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return size, nil
}

// SafeJoin joins name onto base and fails if the result would leave base.
func SafeJoin(base, name string) (string, error) {
	p := path.Join(base, name)
	if p != path.Clean(base) && !strings.HasPrefix(p, path.Clean(base)+"/") {
		return "", errors.New("illegal path: " + name)
	}
	return p, nil
}

func Exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FileSystem provides whole-file access to the local disk.
type FileSystem struct{}

func (FileSystem) MkdirAll(p string) error {
	return os.MkdirAll(p, 0775)
}

func (FileSystem) ReadFile(p string) ([]byte, error) {
	return os.ReadFile(p)
}

// WriteFile replaces the file atomically via a temporary sibling.
func (FileSystem) WriteFile(p string, data []byte) error {
	if err := os.MkdirAll(path.Dir(p), 0775); err != nil {
		return err
	}
	tmpPath := p + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0664); err != nil {
		return err
	}
	return os.Rename(tmpPath, p)
}

func (FileSystem) Exists(p string) (bool, error) {
	return Exists(p)
}
