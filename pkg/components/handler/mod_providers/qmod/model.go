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

package qmod

type FileCopy struct {
	Name        string `json:"name" yaml:"name"`
	Destination string `json:"destination" yaml:"destination"`
}

type CopyExtension struct {
	Extension   string `json:"extension" yaml:"extension"`
	Destination string `json:"destination" yaml:"destination"`
}

type Dependency struct {
	ID                string `json:"id" yaml:"id"`
	Version           string `json:"version" yaml:"version"`
	DownloadIfMissing string `json:"downloadIfMissing" yaml:"downloadIfMissing,omitempty"`
}

type descriptor struct {
	SchemaVersion  string          `json:"_QPVersion"`
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Author         string          `json:"author"`
	Porter         string          `json:"porter"`
	Version        string          `json:"version"`
	PackageID      string          `json:"packageId"`
	PackageVersion string          `json:"packageVersion"`
	Description    string          `json:"description"`
	CoverImage     string          `json:"coverImage"`
	IsLibrary      bool            `json:"isLibrary"`
	ModFiles       []string        `json:"modFiles"`
	LibraryFiles   []string        `json:"libraryFiles"`
	FileCopies     []FileCopy      `json:"fileCopies"`
	CopyExtensions []CopyExtension `json:"copyExtensions"`
	Dependencies   []Dependency    `json:"dependencies"`
}

type Details struct {
	PackageID      string
	PackageVersion string
	CoverImage     string
	ModFiles       []string
	LibraryFiles   []string
	FileCopies     []FileCopy
	CopyExtensions []CopyExtension
	Dependencies   []Dependency
}

type entry struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Author         string          `yaml:"author"`
	Description    string          `yaml:"description"`
	Version        string          `yaml:"version"`
	IsLibrary      bool            `yaml:"isLibrary"`
	Installed      bool            `yaml:"installed"`
	CoverImage     string          `yaml:"coverImage,omitempty"`
	PackageID      string          `yaml:"packageId,omitempty"`
	PackageVersion string          `yaml:"packageVersion,omitempty"`
	ModFiles       []string        `yaml:"modFiles,omitempty"`
	LibraryFiles   []string        `yaml:"libraryFiles,omitempty"`
	FileCopies     []FileCopy      `yaml:"fileCopies,omitempty"`
	CopyExtensions []CopyExtension `yaml:"copyExtensions,omitempty"`
	Dependencies   []Dependency    `yaml:"dependencies,omitempty"`
}
