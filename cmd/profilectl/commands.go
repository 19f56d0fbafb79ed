/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wso2/profile-server/internal/profile/schema"
	"github.com/wso2/profile-server/internal/profile/service"
	"github.com/wso2/profile-server/internal/system/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a profile document against the profile schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			validator, err := schema.Default()
			if err != nil {
				return err
			}
			if err := validator.ValidateDocument(raw); err != nil {
				return describe(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return err
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		publish bool
		org     string
	)

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import a profile document as a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			return withService(cmd.Context(), opts, func(svc service.ProfilesServiceInterface, cfg *config.Config) error {
				if org == "" {
					org = cfg.Import.DefaultOrg
				}
				result, err := svc.ImportProfile(cmd.Context(), service.ImportRequest{
					Document:       raw,
					OrganizationID: org,
					Publish:        publish,
				})
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd, result)
			})
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the version instead of saving a draft")
	cmd.Flags().StringVar(&org, "org", "", "Owning organization (default: the configured default organization)")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "export <profile-iri>",
		Short: "Print a stored profile version as a profile document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(svc service.ProfilesServiceInterface, _ *config.Config) error {
				doc, err := svc.ExportProfile(cmd.Context(), args[0], version)
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd, doc)
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Version IRI (default: published, else draft)")
	return cmd
}

func newPublishCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <profile-iri>",
		Short: "Publish the current draft of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(svc service.ProfilesServiceInterface, _ *config.Config) error {
				profile, err := svc.PublishDraft(cmd.Context(), args[0])
				if err != nil {
					return describe(err)
				}
				return printJSON(cmd, profile)
			})
		},
	}
}

func newDiscardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <profile-iri>",
		Short: "Delete the current draft of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), opts, func(svc service.ProfilesServiceInterface, _ *config.Config) error {
				profile, err := svc.DeleteDraft(cmd.Context(), args[0])
				if err != nil {
					return describe(err)
				}
				if profile == nil {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "profile %s removed\n", args[0])
					return err
				}
				return printJSON(cmd, profile)
			})
		},
	}
}
