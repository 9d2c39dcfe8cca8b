package analysis

import (
	"fmt"

	"github.com/acrsantana/project-guide/internal/oracle"
)

const (
	rootSystem  = "You are an AI assistant that summarizes the primary language and overall purpose of a software project."
	fileSystem  = "You are an AI assistant that analyzes source code files."
	dirSystem   = "You are an AI assistant that analyzes directories of code."
	guideSystem = "You are an expert technical writer who creates clear, well-organized developer guides."
)

func rootRequest(projectDir, listing string) oracle.Request {
	return oracle.Request{
		System: rootSystem,
		Prompt: fmt.Sprintf("Project directory: %s\n\nFiles and directories:\n%s\n\n"+
			"Based on the directory structure and file names, what is the primary language used in this project? "+
			"What is the purpose of the project? Provide a comprehensive summary in language accessible to developers.",
			projectDir, listing),
	}
}

func fileRequest(rel, content string) oracle.Request {
	return oracle.Request{
		System: fileSystem,
		Prompt: fmt.Sprintf("Analyze this file: %s\n\nContent:\n%s\n\n"+
			"Please provide the following information:\n"+
			"1. Overall purpose of the file\n"+
			"2. A list of all fields/variables and their purposes\n"+
			"3. Function definitions with inputs, outputs and purposes\n"+
			"4. Any structures/classes and their significance\n"+
			"5. How this file fits into the rest of the project",
			rel, content),
	}
}

func dirRequest(rel, fileSummaries string) oracle.Request {
	return oracle.Request{
		System: dirSystem,
		Prompt: fmt.Sprintf("Analyze this directory: %s\n\nFiles:\n%s\n\n"+
			"Provide a summary of this directory's purpose and how its contents work together.",
			rel, fileSummaries),
	}
}

func guideRequest(transcript, findingsJSON string) oracle.Request {
	return oracle.Request{
		System: guideSystem,
		Prompt: fmt.Sprintf(`Based on the following project analysis data, create a comprehensive developer guide in markdown format.

Initial summaries:
%s

Detailed findings:
%s

Create a developer guide that includes:

1. Executive Summary
   - Project purpose
   - Key technologies
   - Main features

2. Project Architecture
   - High-level overview
   - Main components
   - Design patterns used
   - Data flow

3. Setup & Installation
   - Prerequisites
   - Environment setup
   - Project configuration

4. Code Organization
   - Directory structure
   - Key files and their purposes
   - Important modules/packages

5. Core Concepts
   - Main abstractions
   - Key interfaces
   - Data models

6. Development Workflow
   - Building
   - Testing
   - Deployment

7. API Reference
   - Key functions
   - Important classes
   - Public interfaces

8. Common Tasks
   - Example workflows
   - Code samples
   - Best practices

Make the guide practical and easy to follow. Use clear headings, code examples where relevant, and include any important notes or warnings.`,
			transcript, findingsJSON),
	}
}
