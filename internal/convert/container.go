// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/pdiddy/hours-mailer/internal/container"
)

// containerDir is where the work directory is mounted inside the container.
const containerDir = "/data"

// ContainerConverter converts documents by running LibreOffice inside a
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	verify  func(string) error
}

// NewContainerConverter creates a converter that runs image with rt. It
// verifies that the image exists locally before returning.
func NewContainerConverter(rt container.Runtime, image string) (*ContainerConverter, error) {
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("LibreOffice image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image, verify: VerifyPDF}, nil
}

// Convert copies docxPath into a scratch directory, mounts it into the
// container, converts there, and moves the verified PDF to pdfPath.
func (c *ContainerConverter) Convert(docxPath, pdfPath string) error {
	work, err := workDir(pdfPath)
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	name := filepath.Base(docxPath)
	if err := copyFile(docxPath, filepath.Join(work, name)); err != nil {
		return fmt.Errorf("staging %s: %w", docxPath, err)
	}

	hostDir, err := filepath.Abs(work)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", work, err)
	}
	mount := container.Mount{HostDir: hostDir, ContainerDir: containerDir}
	args := append([]string{"soffice"}, sofficeArgs(containerDir, path.Join(containerDir, name))...)

	if out, err := c.runtime.Run(c.image, mount, args...); err != nil {
		return fmt.Errorf("%w (%s)", err, trimOutput(out))
	}
	return finish(filepath.Join(work, pdfName(name)), pdfPath, c.verify)
}
