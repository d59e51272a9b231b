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

package archive

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/qavs/qavs-mod-manager/pkg/components/fs_util"
)

func ExtractTarGz(rc io.Reader, targetPath string) (string, error) {
	gzipReader, err := gzip.NewReader(rc)
	if err != nil {
		return "", err
	}
	defer gzipReader.Close()
	tarReader := tar.NewReader(gzipReader)
	var rootDir string
	for {
		tarHeader, err := tarReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		dst, err := fs_util.SafeJoin(targetPath, tarHeader.Name)
		if err != nil {
			return "", err
		}
		if tarHeader.Typeflag == tar.TypeDir {
			if rootDir == "" {
				parts := strings.Split(tarHeader.Name, string(os.PathSeparator))
				if len(parts) > 0 {
					rootDir = parts[0]
				}
			}
			if err = os.MkdirAll(dst, fs.FileMode(tarHeader.Mode)); err != nil {
				return "", err
			}
		}
		if tarHeader.Typeflag == tar.TypeReg {
			if err = os.MkdirAll(path.Dir(dst), 0775); err != nil {
				return "", err
			}
			if err = writeFile(dst, tarHeader.Mode, tarReader); err != nil {
				return "", err
			}
		}
	}
	return rootDir, nil
}

// CreateTarGz writes the contents of srcPath below rootDir into a gzip compressed tar stream.
// The callback receives the number of bytes written so far.
func CreateTarGz(w io.Writer, srcPath, rootDir string, progress func(n int64)) error {
	gzipWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzipWriter)
	var written int64
	err := filepath.WalkDir(srcPath, func(currentPath string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(srcPath, currentPath)
		if err != nil {
			return err
		}
		fileInfo, err := dirEntry.Info()
		if err != nil {
			return err
		}
		if !dirEntry.IsDir() && !fileInfo.Mode().IsRegular() {
			return nil
		}
		tarHeader, err := tar.FileInfoHeader(fileInfo, "")
		if err != nil {
			return err
		}
		tarHeader.Name = path.Join(rootDir, filepath.ToSlash(relPath))
		if dirEntry.IsDir() {
			tarHeader.Name += "/"
		}
		if err = tarWriter.WriteHeader(tarHeader); err != nil {
			return err
		}
		if dirEntry.IsDir() {
			return nil
		}
		file, err := os.Open(currentPath)
		if err != nil {
			return err
		}
		defer file.Close()
		n, err := io.Copy(tarWriter, file)
		if err != nil {
			return err
		}
		written += n
		if progress != nil {
			progress(written)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err = tarWriter.Close(); err != nil {
		return err
	}
	return gzipWriter.Close()
}

// ExtractZip extracts every regular entry of the zip archive at zipPath into targetPath.
func ExtractZip(zipPath, targetPath string) error {
	zipReader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer zipReader.Close()
	for _, file := range zipReader.File {
		dst, err := fs_util.SafeJoin(targetPath, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(dst, 0775); err != nil {
				return err
			}
			continue
		}
		if err = os.MkdirAll(path.Dir(dst), 0775); err != nil {
			return err
		}
		if err = extractZipFile(file, dst); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(file *zip.File, dst string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0664)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

func writeFile(name string, mode int64, reader *tar.Reader) error {
	file, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fs.FileMode(mode))
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, reader)
	if err != nil {
		return err
	}
	return nil
}
